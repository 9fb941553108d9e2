// Package store provides the in-memory job registry.
//
// Job state lives for the lifetime of the process only; restarting the server
// forgets all jobs. That is a documented limitation of this service, not a
// correctness gap: clients resubmit rather than resume.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sceneforge/sceneforge/internal/types"
)

// ErrNotFound is returned when a job id does not exist in the store
var ErrNotFound = errors.New("job not found")

// Store is a concurrency-safe mapping from job id to job record.
//
// It is constructed explicitly and passed by reference to the API layer and
// the pipeline runner. Reads return copies, so callers never observe a record
// mid-mutation. There is no delete: job ids are never reused.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

// New creates an empty job store
func New() *Store {
	return &Store{
		jobs: make(map[string]*types.Job),
	}
}

// Create registers a new job record. The job id must be unused.
func (s *Store) Create(job types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.JobID]; exists {
		return fmt.Errorf("job %s already exists", job.JobID)
	}

	j := job
	s.jobs[job.JobID] = &j
	return nil
}

// Get returns a copy of the job record for the given id
func (s *Store) Get(id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return types.Job{}, ErrNotFound
	}
	return *job, nil
}

// Update applies mutate to the job record under the write lock and returns the
// updated copy. The mutation sees and modifies the live record, so concurrent
// readers observe either the state before or after it, never in between.
func (s *Store) Update(id string, mutate func(*types.Job)) (types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return types.Job{}, ErrNotFound
	}

	mutate(job)
	return *job, nil
}

// Len returns the number of registered jobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
