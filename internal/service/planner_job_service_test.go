package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

type dispatcherSpy struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (d *dispatcherSpy) Enqueue(job jobs.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type plannerStub struct {
	manualCalls int
	autoCalls   int
	result      *dto.PlanResponse
	err         error
}

func (p *plannerStub) Manual(context.Context, dto.PlanRequest) (*dto.PlanResponse, error) {
	p.manualCalls++
	return p.result, p.err
}

func (p *plannerStub) Auto(context.Context, dto.AutoPlanRequest) (*dto.PlanResponse, bool, error) {
	p.autoCalls++
	return p.result, false, p.err
}

type jobMetricsSpy struct {
	statuses []models.PlanJobStatus
}

func (m *jobMetricsSpy) ObservePlanJob(status models.PlanJobStatus) {
	m.statuses = append(m.statuses, status)
}

func autoJobRequest(seq int64) dto.PlanJobRequest {
	return dto.PlanJobRequest{
		Mode:           models.PlanModeAuto,
		ClientSequence: seq,
		Request: dto.AutoPlanRequest{
			PlanRequest: dto.PlanRequest{CatalogID: "8d7c7d1e-2f4a-4c55-9a53-1f0b5b0c7f10"},
			Band:        "morning",
		},
	}
}

func TestPlanJobServiceSubmitAssignsIncreasingSequence(t *testing.T) {
	queue := &dispatcherSpy{}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})

	first, err := svc.Submit(context.Background(), autoJobRequest(7))
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), autoJobRequest(8))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(2), second.Sequence)
	assert.Equal(t, int64(7), first.ClientSequence)
	assert.Equal(t, models.PlanJobQueued, first.Status)
	require.Len(t, queue.jobs, 2)
	assert.Equal(t, first.ID, queue.jobs[0].ID)
	assert.Equal(t, planJobType, queue.jobs[0].Type)
}

func TestPlanJobServiceSubmitValidation(t *testing.T) {
	svc := NewPlanJobService(&dispatcherSpy{}, nil, nil, PlanJobServiceConfig{})
	req := autoJobRequest(1)
	req.Mode = "batch"

	_, err := svc.Submit(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestPlanJobServiceSubmitQueueFull(t *testing.T) {
	queue := &dispatcherSpy{err: fmt.Errorf("queue planner: %w", jobs.ErrQueueFull)}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})

	_, err := svc.Submit(context.Background(), autoJobRequest(1))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnavailable))
	assert.Equal(t, 0, svc.store.Len())
}

func TestPlanJobServiceSubmitWithoutQueue(t *testing.T) {
	svc := NewPlanJobService(nil, nil, nil, PlanJobServiceConfig{})
	_, err := svc.Submit(context.Background(), autoJobRequest(1))
	assert.True(t, appErrors.Is(err, appErrors.ErrUnavailable))
}

func TestPlanJobWorkerStoresResult(t *testing.T) {
	queue := &dispatcherSpy{}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})
	runner := &plannerStub{result: &dto.PlanResponse{Mode: "auto", Found: true, Candidates: 3}}
	metrics := &jobMetricsSpy{}
	worker := NewPlanJobWorker(svc, runner, metrics, nil)

	submitted, err := svc.Submit(context.Background(), autoJobRequest(1))
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))

	got, err := svc.Get(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanJobSucceeded, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.FinishedAt)
	require.NotNil(t, got.Result)
	assert.Equal(t, 3, got.Result.Candidates)
	assert.Equal(t, 1, runner.autoCalls)
	assert.Equal(t, []models.PlanJobStatus{models.PlanJobSucceeded}, metrics.statuses)
}

func TestPlanJobWorkerRunsManualMode(t *testing.T) {
	queue := &dispatcherSpy{}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})
	runner := &plannerStub{result: &dto.PlanResponse{Mode: "manual", Found: true}}
	worker := NewPlanJobWorker(svc, runner, nil, nil)

	req := autoJobRequest(1)
	req.Mode = models.PlanModeManual
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))
	assert.Equal(t, 1, runner.manualCalls)
	assert.Equal(t, 0, runner.autoCalls)
}

func TestPlanJobWorkerValidationFailureIsFinal(t *testing.T) {
	queue := &dispatcherSpy{}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})
	runner := &plannerStub{err: appErrors.Clone(appErrors.ErrValidation, "subject \"X\" is not in the catalog")}
	worker := NewPlanJobWorker(svc, runner, nil, nil)

	submitted, err := svc.Submit(context.Background(), autoJobRequest(1))
	require.NoError(t, err)
	assert.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))

	got, err := svc.Get(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanJobFailed, got.Status)
	assert.Equal(t, "subject \"X\" is not in the catalog", got.Error)
	assert.Nil(t, got.Result)
}

func TestPlanJobWorkerTransientFailureRetriesThenGivesUp(t *testing.T) {
	queue := &dispatcherSpy{}
	svc := NewPlanJobService(queue, nil, nil, PlanJobServiceConfig{})
	cause := errors.New("connection reset")
	runner := &plannerStub{err: appErrors.Wrap(cause, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")}
	metrics := &jobMetricsSpy{}
	worker := NewPlanJobWorker(svc, runner, metrics, nil)

	submitted, err := svc.Submit(context.Background(), autoJobRequest(1))
	require.NoError(t, err)
	err = worker.Handle(context.Background(), queue.jobs[0])
	require.Error(t, err)

	got, _ := svc.Get(context.Background(), submitted.ID)
	assert.Equal(t, models.PlanJobQueued, got.Status)

	job := queue.jobs[0]
	job.Attempt = 2
	worker.GiveUp(job, err)
	got, _ = svc.Get(context.Background(), submitted.ID)
	assert.Equal(t, models.PlanJobFailed, got.Status)
	assert.Equal(t, "failed to load catalog", got.Error)
	assert.Equal(t, []models.PlanJobStatus{models.PlanJobFailed}, metrics.statuses)
}

func TestPlanJobServiceGetUnknown(t *testing.T) {
	svc := NewPlanJobService(&dispatcherSpy{}, nil, nil, PlanJobServiceConfig{})
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPlanJobStoreExpiresFinishedRecords(t *testing.T) {
	store := newPlanJobStore(time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	finished := now.Add(-2 * time.Minute)
	store.Save(planJobRecord{job: models.PlanJob{ID: "done", Status: models.PlanJobSucceeded, FinishedAt: &finished}})
	store.Save(planJobRecord{job: models.PlanJob{ID: "running", Status: models.PlanJobRunning}})
	recent := now.Add(-10 * time.Second)
	store.Save(planJobRecord{job: models.PlanJob{ID: "fresh", Status: models.PlanJobFailed, FinishedAt: &recent}})

	_, ok := store.Get("done")
	assert.False(t, ok)
	_, ok = store.Get("running")
	assert.True(t, ok)

	store.Save(planJobRecord{job: models.PlanJob{ID: "done", Status: models.PlanJobSucceeded, FinishedAt: &finished}})
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 2, store.Len())
}

func TestPlanJobsEndToEndThroughQueue(t *testing.T) {
	svc := NewPlanJobService(nil, nil, nil, PlanJobServiceConfig{})
	runner := &plannerStub{result: &dto.PlanResponse{Mode: "auto", Found: true}}
	worker := NewPlanJobWorker(svc, runner, nil, nil)
	queue := jobs.NewQueue("planner", worker.Handle, jobs.QueueConfig{Workers: 1, BufferSize: 4, OnGiveUp: worker.GiveUp})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	svc.AttachQueue(queue)

	submitted, err := svc.Submit(context.Background(), autoJobRequest(1))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := svc.Get(context.Background(), submitted.ID)
		return err == nil && got.Status == models.PlanJobSucceeded
	}, 2*time.Second, 10*time.Millisecond)
}
