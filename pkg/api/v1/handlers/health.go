package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/sceneforge/sceneforge/internal/services"
	"github.com/sceneforge/sceneforge/internal/types"
)

// HealthHandler handles the health check and server configuration endpoints
type HealthHandler struct {
	jobService *services.Job
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(jobService *services.Job) *HealthHandler {
	return &HealthHandler{jobService: jobService}
}

// Health reports server liveness and the execution mode
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(types.HealthResponse{
		Status: "ok",
		Mode:   h.jobService.ServerConfig().Mode,
	})
}

// GetConfig returns the process-wide pipeline configuration for the frontend
func (h *HealthHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(h.jobService.ServerConfig())
}
