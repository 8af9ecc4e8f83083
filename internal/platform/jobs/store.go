package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hrpay/internal/platform/querier"
)

// PGStore keeps runs in the job_runs table.
type PGStore struct {
	DB querier.Querier
}

func NewPGStore(db querier.Querier) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) CreateRun(ctx context.Context, jobType, status string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id::text
  `, jobType, status).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PGStore) UpdateRun(ctx context.Context, id, status string, details []byte) error {
	if details == nil {
		_, err := s.DB.Exec(ctx, "UPDATE job_runs SET status = $1 WHERE id = $2", status, id)
		return err
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}

func (s *PGStore) GetRun(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, ErrNotFound
	}
	var r Run
	var details []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE id = $1
  `, id).Scan(&r.ID, &r.Type, &r.Status, &details, &r.StartedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	r.Details = details
	return r, nil
}

// MemoryStore keeps runs in process for deployments without a database.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]Run
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[string]Run{}, now: time.Now}
}

func (m *MemoryStore) CreateRun(_ context.Context, jobType, status string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.runs[id] = Run{ID: id, Type: jobType, Status: status, StartedAt: m.now().UTC()}
	return id, nil
}

func (m *MemoryStore) UpdateRun(_ context.Context, id, status string, details []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	if details != nil {
		r.Details = append([]byte(nil), details...)
		completed := m.now().UTC()
		r.CompletedAt = &completed
	}
	m.runs[id] = r
	return nil
}

func (m *MemoryStore) GetRun(_ context.Context, id string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return r, nil
}
