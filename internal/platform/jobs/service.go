package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

const (
	JobPayrollBatch = "payroll_batch"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrQueueFull = errors.New("job queue full")
	ErrNotFound  = errors.New("job run not found")
)

type Run struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type RunStore interface {
	CreateRun(ctx context.Context, jobType, status string) (string, error)
	UpdateRun(ctx context.Context, id, status string, details []byte) error
	GetRun(ctx context.Context, id string) (Run, error)
}

// Observer is told about every finished run.
type Observer interface {
	ObserveJob(jobType, status string)
}

type Service struct {
	store    RunStore
	observer Observer
	queue    chan job
}

type job struct {
	ID   string
	Type string
	Run  func(context.Context) (any, error)
}

func New(store RunStore, observer Observer, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Service{
		store:    store,
		observer: observer,
		queue:    make(chan job, queueSize),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue records a queued run and hands it to the worker. The run is marked failed
// when the queue has no room.
func (s *Service) Enqueue(ctx context.Context, jobType string, run func(context.Context) (any, error)) (string, error) {
	id, err := s.store.CreateRun(ctx, jobType, StatusQueued)
	if err != nil {
		return "", err
	}
	select {
	case s.queue <- job{ID: id, Type: jobType, Run: run}:
		return id, nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "jobId", id)
		if updErr := s.store.UpdateRun(ctx, id, StatusFailed, []byte(`{"error":"job queue full"}`)); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
		return "", ErrQueueFull
	}
}

func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	return s.store.GetRun(ctx, id)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "jobId", j.ID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	if err := s.store.UpdateRun(ctx, j.ID, StatusRunning, nil); err != nil {
		slog.Warn("job run update failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if updErr := s.store.UpdateRun(ctx, j.ID, status, detailsJSON); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
	if s.observer != nil {
		s.observer.ObserveJob(j.Type, status)
	}
	return details, err
}
