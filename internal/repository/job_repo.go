package repository

import (
	"sync"

	"github.com/accessivision/backend/internal/domain"
	"github.com/google/uuid"
)

// JobRepository is the in-memory registry of audit jobs. The pipeline
// goroutine writes through Mutate while status polls read through Get, so
// every access to the stored records goes through the mutex. Records live
// for the life of the process; there is no eviction.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

// NewJobRepository creates an empty job registry.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs: make(map[string]*domain.Job),
	}
}

// Create allocates a fresh job in processing state and returns its ID.
// IDs are random UUIDs and are never reused.
func (r *JobRepository) Create() string {
	job := &domain.Job{
		ID:      uuid.New().String(),
		Status:  domain.JobStatusProcessing,
		Results: []domain.Result{},
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	return job.ID
}

// Get returns a deep-copied snapshot of the job, or false when the ID is
// unknown. An unknown ID is an expected condition for pollers, not an error.
func (r *JobRepository) Get(id string) (*domain.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Mutate applies fn to the stored job atomically with respect to other
// mutations and reads. It reports false when the ID is unknown.
func (r *JobRepository) Mutate(id string, fn func(*domain.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Count returns the number of jobs tracked by the registry.
func (r *JobRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
