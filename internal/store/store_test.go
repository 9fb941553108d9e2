package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceneforge/sceneforge/internal/types"
)

func newJob(id string) types.Job {
	return types.Job{
		JobID:        id,
		Status:       types.JobStatusQueued,
		PipelineMode: types.PipelineModeDemo,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := New()

	require.NoError(t, s.Create(newJob("job-1")))

	got, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, types.JobStatusQueued, got.Status)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DuplicateCreate(t *testing.T) {
	s := New()

	require.NoError(t, s.Create(newJob("job-1")))
	err := s.Create(newJob("job-1"))
	assert.Error(t, err)
}

func TestStore_GetUnknown(t *testing.T) {
	s := New()

	_, err := s.Get("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateUnknown(t *testing.T) {
	s := New()

	_, err := s.Update("does-not-exist", func(j *types.Job) {
		j.Status = types.JobStatusDone
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newJob("job-1")))

	updated, err := s.Update("job-1", func(j *types.Job) {
		j.Status = types.JobStatusProcessing
		j.CurrentStage = "load_floorplan"
	})
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusProcessing, updated.Status)
	assert.Equal(t, "load_floorplan", updated.CurrentStage)

	got, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newJob("job-1")))

	got, err := s.Get("job-1")
	require.NoError(t, err)

	// Mutating the returned value must not affect the stored record
	got.Status = types.JobStatusFailed
	got.Error = "mutated"

	fresh, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusQueued, fresh.Status)
	assert.Empty(t, fresh.Error)
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newJob("job-1")))

	var wg sync.WaitGroup

	// Single writer advancing the job, many readers polling it
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, err := s.Update("job-1", func(j *types.Job) {
				j.CurrentStage = fmt.Sprintf("stage-%d", i)
			})
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				job, err := s.Get("job-1")
				assert.NoError(t, err)
				assert.Equal(t, "job-1", job.JobID)
			}
		}()
	}

	wg.Wait()
}
