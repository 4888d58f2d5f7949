package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

const planJobType = "planner.run"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type planRunner interface {
	Manual(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error)
	Auto(ctx context.Context, req dto.AutoPlanRequest) (*dto.PlanResponse, bool, error)
}

type planJobMetrics interface {
	ObservePlanJob(status models.PlanJobStatus)
}

// PlanJobServiceConfig governs result retention.
type PlanJobServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// PlanJobService accepts planner runs for background execution and reports
// their progress.
type PlanJobService struct {
	store     *planJobStore
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlanJobServiceConfig
	sequence  atomic.Uint64
}

// NewPlanJobService constructs the service. queue may be attached later with
// AttachQueue since the queue's handler needs the worker built from this
// service.
func NewPlanJobService(queue jobDispatcher, validate *validator.Validate, logger *zap.Logger, cfg PlanJobServiceConfig) *PlanJobService {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 15 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanJobService{
		store:     newPlanJobStore(cfg.ResultTTL),
		queue:     queue,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// AttachQueue sets the dispatcher jobs are submitted to.
func (s *PlanJobService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// Submit records the request and queues it. Every accepted job gets the next
// server sequence number.
func (s *PlanJobService) Submit(ctx context.Context, req dto.PlanJobRequest) (*dto.PlanJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planner job payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "background planning is disabled")
	}

	job := models.PlanJob{
		ID:             uuid.NewString(),
		Sequence:       s.sequence.Add(1),
		ClientSequence: req.ClientSequence,
		Mode:           req.Mode,
		Status:         models.PlanJobQueued,
		CreatedAt:      time.Now().UTC(),
	}
	s.store.Save(planJobRecord{job: job, request: req})

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: planJobType}); err != nil {
		s.store.Delete(job.ID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "planner queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue planner job")
	}
	s.logger.Debug("planner job queued", zap.String("job_id", job.ID), zap.Uint64("sequence", job.Sequence), zap.String("mode", string(job.Mode)))
	return &dto.PlanJobResponse{PlanJob: job}, nil
}

// Get reports a job's state with its result once it succeeded.
func (s *PlanJobService) Get(_ context.Context, id string) (*dto.PlanJobResponse, error) {
	record, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "planner job not found or expired")
	}
	return &dto.PlanJobResponse{PlanJob: record.job, Result: record.result}, nil
}

// StartCleanup boots a goroutine that drops expired results periodically.
func (s *PlanJobService) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.store.Sweep(); removed > 0 {
					s.logger.Debug("expired planner jobs removed", zap.Int("count", removed))
				}
			}
		}
	}()
}

// PlanJobWorker runs queued planner jobs.
type PlanJobWorker struct {
	store   *planJobStore
	planner planRunner
	metrics planJobMetrics
	logger  *zap.Logger
}

// NewPlanJobWorker constructs a worker sharing the service's job records.
func NewPlanJobWorker(service *PlanJobService, planner planRunner, metrics planJobMetrics, logger *zap.Logger) *PlanJobWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanJobWorker{store: service.store, planner: planner, metrics: metrics, logger: logger}
}

// Handle processes a queue job. Failures caused by the request itself are
// final; anything else is returned so the queue retries it.
func (w *PlanJobWorker) Handle(ctx context.Context, job jobs.Job) error {
	var request dto.PlanJobRequest
	started := time.Now().UTC()
	if !w.store.Update(job.ID, func(r *planJobRecord) {
		request = r.request
		r.job.Status = models.PlanJobRunning
		r.job.Attempts = job.Attempt + 1
		if r.job.StartedAt == nil {
			r.job.StartedAt = &started
		}
	}) {
		w.logger.Warn("planner job vanished before it ran", zap.String("job_id", job.ID))
		return nil
	}

	var (
		result *dto.PlanResponse
		err    error
	)
	switch request.Mode {
	case models.PlanModeAuto:
		result, _, err = w.planner.Auto(ctx, request.Request)
	default:
		result, err = w.planner.Manual(ctx, request.Request.PlanRequest)
	}

	if err != nil {
		if retryable(err) {
			w.store.Update(job.ID, func(r *planJobRecord) {
				r.job.Status = models.PlanJobQueued
				r.job.Error = err.Error()
			})
			return err
		}
		w.finish(job.ID, nil, err)
		return nil
	}
	w.finish(job.ID, result, nil)
	return nil
}

// GiveUp marks a job failed once the queue stops retrying it.
func (w *PlanJobWorker) GiveUp(job jobs.Job, err error) {
	w.finish(job.ID, nil, err)
}

func (w *PlanJobWorker) finish(id string, result *dto.PlanResponse, err error) {
	finished := time.Now().UTC()
	status := models.PlanJobSucceeded
	if err != nil {
		status = models.PlanJobFailed
	}
	w.store.Update(id, func(r *planJobRecord) {
		r.job.Status = status
		r.job.FinishedAt = &finished
		r.result = result
		r.job.Error = ""
		if err != nil {
			r.job.Error = appErrors.FromError(err).Message
		}
	})
	if w.metrics != nil {
		w.metrics.ObservePlanJob(status)
	}
	if err != nil {
		w.logger.Warn("planner job failed", zap.String("job_id", id), zap.Error(err))
		return
	}
	w.logger.Debug("planner job finished", zap.String("job_id", id))
}

// retryable separates transient failures from ones the same request would
// hit again.
func retryable(err error) bool {
	switch {
	case appErrors.Is(err, appErrors.ErrValidation),
		appErrors.Is(err, appErrors.ErrNotFound),
		appErrors.Is(err, appErrors.ErrTimeout):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
