// Package services provides the business logic between the HTTP handlers and
// the job store and pipeline runner.
package services

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sceneforge/sceneforge/internal/config"
	"github.com/sceneforge/sceneforge/internal/logger"
	"github.com/sceneforge/sceneforge/internal/pipeline"
	"github.com/sceneforge/sceneforge/internal/store"
	"github.com/sceneforge/sceneforge/internal/types"
)

// Job provides business logic for conversion job operations
type Job struct {
	cfg    *config.Config
	store  *store.Store
	runner *pipeline.Runner
}

// NewJobService creates a new job service instance
func NewJobService(cfg *config.Config, s *store.Store, runner *pipeline.Runner) *Job {
	return &Job{cfg: cfg, store: s, runner: runner}
}

// NewJobID allocates an opaque job identifier. Identifiers are 32 hex
// characters and are never reused within the process lifetime.
func (s *Job) NewJobID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// ValidateUpload checks that a submitted floorplan is an accepted image type.
// Rejected submissions create no job.
func (s *Job) ValidateUpload(contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("only image uploads are supported, got %q", contentType)
	}
	return nil
}

// UploadPath returns where a job's floorplan image is stored, preserving the
// client's filename
func (s *Job) UploadPath(jobID, filename string) string {
	return filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", jobID, filepath.Base(filename)))
}

// AnnotationPath returns where a job's R2V annotation file is stored
func (s *Job) AnnotationPath(jobID string) string {
	return filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_r2v_annotation.txt", jobID))
}

// EnsureUploadDir creates the upload directory if needed
func (s *Job) EnsureUploadDir() error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	return nil
}

// StartJob registers a new queued job for the stored upload and launches its
// pipeline in the background. The call returns as soon as the job record
// exists; the creating request never waits on pipeline execution.
func (s *Job) StartJob(jobID, uploadPath, annotationPath string) (types.Job, error) {
	job := types.Job{
		JobID:        jobID,
		Status:       types.JobStatusQueued,
		PipelineMode: s.cfg.EffectiveMode(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(job); err != nil {
		return types.Job{}, err
	}

	logger.InfoWithFields("Job created", map[string]interface{}{
		"job_id": jobID,
		"mode":   string(job.PipelineMode),
	})

	s.runner.Launch(job, pipeline.Input{
		UploadPath:     uploadPath,
		AnnotationPath: annotationPath,
	})

	return job, nil
}

// GetJob retrieves a job by its ID. Returns store.ErrNotFound for unknown ids.
func (s *Job) GetJob(id string) (types.Job, error) {
	return s.store.Get(id)
}

// ServerConfig reports the process-wide pipeline configuration
func (s *Job) ServerConfig() types.ConfigResponse {
	return types.ConfigResponse{
		Mode:         s.cfg.Mode,
		PipelineMode: s.cfg.PipelineMode,
		GPUEnabled:   s.cfg.GPUEnabled,
	}
}
