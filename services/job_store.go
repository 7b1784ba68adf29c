package services

import (
	"context"
	"sort"
	"sync"

	"resumeanalyzer/models"
)

// JobStore persists bulk jobs.
type JobStore interface {
	Save(ctx context.Context, job *models.BulkJob) error
	Load(ctx context.Context, jobID string) (*models.BulkJob, error)
	List(ctx context.Context) ([]*models.BulkJob, error)
}

// MemoryJobStore keeps jobs in process; they are lost on restart.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.BulkJob
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*models.BulkJob)}
}

func (s *MemoryJobStore) Save(_ context.Context, job *models.BulkJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job.Clone()
	return nil
}

func (s *MemoryJobStore) Load(_ context.Context, jobID string) (*models.BulkJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryJobStore) List(_ context.Context) ([]*models.BulkJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*models.BulkJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

// PostgresJobStore stores jobs through models.BulkJobModel.
type PostgresJobStore struct {
	model *models.BulkJobModel
	limit int
}

func NewPostgresJobStore(model *models.BulkJobModel) *PostgresJobStore {
	return &PostgresJobStore{model: model, limit: 100}
}

func (s *PostgresJobStore) Save(ctx context.Context, job *models.BulkJob) error {
	return s.model.Save(ctx, job)
}

func (s *PostgresJobStore) Load(ctx context.Context, jobID string) (*models.BulkJob, error) {
	return s.model.GetByID(ctx, jobID)
}

func (s *PostgresJobStore) List(ctx context.Context) ([]*models.BulkJob, error) {
	return s.model.List(ctx, s.limit)
}
