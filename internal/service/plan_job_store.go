package service

import (
	"sync"
	"time"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
)

type planJobRecord struct {
	job     models.PlanJob
	request dto.PlanJobRequest
	result  *dto.PlanResponse
}

// planJobStore keeps job records in memory. Finished records expire ttl after
// they finish; unfinished ones stay until they finish.
type planJobStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]*planJobRecord
}

func newPlanJobStore(ttl time.Duration) *planJobStore {
	return &planJobStore{
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[string]*planJobRecord),
	}
}

func (s *planJobStore) Save(record planJobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[record.job.ID] = &record
}

// Get returns a copy of the record.
func (s *planJobStore) Get(id string) (planJobRecord, bool) {
	s.mu.RLock()
	record, ok := s.items[id]
	var snapshot planJobRecord
	if ok {
		snapshot = *record
	}
	s.mu.RUnlock()
	if !ok {
		return planJobRecord{}, false
	}
	if s.expired(snapshot.job) {
		s.Delete(id)
		return planJobRecord{}, false
	}
	return snapshot, true
}

// Update applies fn to the stored record under the write lock. It reports
// false when the record is gone.
func (s *planJobStore) Update(id string, fn func(*planJobRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[id]
	if !ok {
		return false
	}
	fn(record)
	return true
}

func (s *planJobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Sweep drops every expired record and returns how many were removed.
func (s *planJobStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, record := range s.items {
		if s.expired(record.job) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *planJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *planJobStore) expired(job models.PlanJob) bool {
	if !job.Status.Done() || job.FinishedAt == nil {
		return false
	}
	return s.now().Sub(*job.FinishedAt) > s.ttl
}
