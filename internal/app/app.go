// Package app assembles the fiber application from its handlers and middleware
package app

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/sceneforge/sceneforge/internal/api/v1/middleware"
	"github.com/sceneforge/sceneforge/internal/assets"
	"github.com/sceneforge/sceneforge/internal/config"
	"github.com/sceneforge/sceneforge/pkg/api/v1/handlers"
	"github.com/sceneforge/sceneforge/pkg/api/v1/routes"
)

// uploadBodyLimit bounds multipart submissions; floorplan scans can be large
const uploadBodyLimit = 64 * 1024 * 1024

// New builds the fiber application with all routes registered
func New(cfg *config.Config, jobHandler *handlers.JobHandler, healthHandler *handlers.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    uploadBodyLimit,
	})

	app.Use(cors.New())
	app.Use(middleware.Logger())

	// Completed-job artifacts are served directly from the jobs directory
	app.Static(assets.StaticPrefix, cfg.JobsDir)

	routes.RegisterRoutes(app, jobHandler, healthHandler)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
