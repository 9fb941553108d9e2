package handlers

import (
	"errors"
	"os"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sceneforge/sceneforge/internal/assets"
	"github.com/sceneforge/sceneforge/internal/services"
	"github.com/sceneforge/sceneforge/internal/store"
	"github.com/sceneforge/sceneforge/internal/types"
)

// Multipart field names accepted by the convert endpoint
const (
	// FileField carries the required floorplan image
	FileField = "file"
	// AnnotationField carries the optional R2V annotation file
	AnnotationField = "r2v_annotation"
)

// JobHandler handles HTTP requests for conversion job operations
type JobHandler struct {
	jobService *services.Job
	publisher  *assets.Publisher
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(jobService *services.Job, publisher *assets.Publisher) *JobHandler {
	return &JobHandler{jobService: jobService, publisher: publisher}
}

// CreateConversion handles a floorplan submission. It validates and stores the
// uploaded files, creates the job and schedules the pipeline, then returns
// immediately with the queued job's id.
func (h *JobHandler) CreateConversion(c *fiber.Ctx) error {
	file, err := c.FormFile(FileField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("a floorplan image file is required"))
	}

	if err := h.jobService.ValidateUpload(file.Header.Get(fiber.HeaderContentType)); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.jobService.EnsureUploadDir(); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}

	jobID := h.jobService.NewJobID()

	uploadPath := h.jobService.UploadPath(jobID, file.Filename)
	if err := c.SaveFile(file, uploadPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer("storing uploaded floorplan failed"))
	}

	annotationPath := ""
	if annotation, err := c.FormFile(AnnotationField); err == nil && annotation.Filename != "" {
		annotationPath = h.jobService.AnnotationPath(jobID)
		if err := c.SaveFile(annotation, annotationPath); err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(types.ErrServer("storing annotation file failed"))
		}
	}

	job, err := h.jobService.StartJob(jobID, uploadPath, annotationPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}

	return c.Status(fiber.StatusAccepted).JSON(types.JobCreateResponse{
		JobID:  job.JobID,
		Status: job.Status,
	})
}

// GetJobStatus handles the request to get a job's status
func (h *JobHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid job id"))
	}

	job, err := h.jobService.GetJob(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(types.ErrNotFound("job not found"))
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}

	return c.JSON(job.StatusResponse())
}

// DownloadScene serves the job's scene mesh with download semantics
func (h *JobHandler) DownloadScene(c *fiber.Ctx) error {
	return h.download(c, assets.SceneArtifact, "model not found")
}

// DownloadWalkthrough serves the job's walkthrough video with download semantics
func (h *JobHandler) DownloadWalkthrough(c *fiber.Ctx) error {
	return h.download(c, assets.WalkthroughArtifact, "video not found")
}

func (h *JobHandler) download(c *fiber.Ctx, artifact assets.Artifact, missingMsg string) error {
	jobID := c.Params("id")

	if _, err := h.jobService.GetJob(jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(types.ErrNotFound("job not found"))
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}

	path := h.publisher.ArtifactPath(jobID, artifact)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(missingMsg))
	}

	if err := c.Download(path, artifact.DownloadName); err != nil {
		return err
	}

	// SendFile derives a content type from the extension; the artifact's
	// declared media type wins.
	c.Set(fiber.HeaderContentType, artifact.MediaType)
	return nil
}
