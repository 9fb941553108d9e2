// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sceneforge/sceneforge/pkg/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Configuration
	GetServerConfig = "GetServerConfig"

	// Job routes
	CreateConversion    = "CreateConversion"
	GetJobStatus        = "GetJobStatus"
	DownloadScene       = "DownloadScene"
	DownloadWalkthrough = "DownloadWalkthrough"
)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering is important because routes will try and match in the
// order they are registered. The download routes must be registered before
// the bare :id route would otherwise swallow them.
func RegisterRoutes(
	app *fiber.App,
	jobHandler *handlers.JobHandler,
	healthHandler *handlers.HealthHandler,
) {
	// Health check
	app.Get("/health", healthHandler.Health).Name(HealthCheck)

	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	v1.Get("/config", healthHandler.GetConfig).Name(GetServerConfig)
	v1.Post("/convert", jobHandler.CreateConversion).Name(CreateConversion)

	// Job endpoints
	jobs := v1.Group("/jobs")
	jobs.Get("/:id/download/scene", jobHandler.DownloadScene).Name(DownloadScene)
	jobs.Get("/:id/download/walkthrough", jobHandler.DownloadWalkthrough).Name(DownloadWalkthrough)
	jobs.Get("/:id", jobHandler.GetJobStatus).Name(GetJobStatus)
}

// Route helpers used by the API client

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return "/health"
}

// ConfigURL returns the URL for the server configuration endpoint
func ConfigURL() string {
	return APIv1Prefix + "/config"
}

// ConvertURL returns the URL for submitting a conversion job
func ConvertURL() string {
	return APIv1Prefix + "/convert"
}

// JobURL returns the URL for querying a job's status
func JobURL(jobID string) string {
	return fmt.Sprintf("%s/jobs/%s", APIv1Prefix, jobID)
}

// DownloadSceneURL returns the URL for downloading a job's scene mesh
func DownloadSceneURL(jobID string) string {
	return fmt.Sprintf("%s/jobs/%s/download/scene", APIv1Prefix, jobID)
}

// DownloadWalkthroughURL returns the URL for downloading a job's walkthrough video
func DownloadWalkthroughURL(jobID string) string {
	return fmt.Sprintf("%s/jobs/%s/download/walkthrough", APIv1Prefix, jobID)
}
