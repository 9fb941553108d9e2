// Package client provides the API client for interacting with the sceneforge API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sceneforge/sceneforge/internal/types"
	"github.com/sceneforge/sceneforge/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for the API client
type Client interface {
	// HealthCheck reports server liveness
	HealthCheck(ctx context.Context) (types.HealthResponse, error)

	// GetConfig fetches the server's pipeline configuration
	GetConfig(ctx context.Context) (types.ConfigResponse, error)

	// CreateConversion submits a floorplan image, and optionally an R2V
	// annotation file, and returns the queued job
	CreateConversion(ctx context.Context, imagePath, annotationPath string) (types.JobCreateResponse, error)

	// GetJob fetches the status of a job
	GetJob(ctx context.Context, jobID string) (types.JobStatusResponse, error)

	// DownloadScene saves a completed job's scene mesh to destPath
	DownloadScene(ctx context.Context, jobID, destPath string) error

	// DownloadWalkthrough saves a completed job's walkthrough video to destPath
	DownloadWalkthrough(ctx context.Context, jobID, destPath string) error
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return agent, nil
}

// doJSON executes the agent request and decodes a JSON response into out
func doJSON(agent *fiber.Agent, out interface{}) error {
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %v", errs[0])
	}

	if code >= http.StatusBadRequest {
		var apiErr types.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", code, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", code)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// HealthCheck reports server liveness
func (c *APIClient) HealthCheck(ctx context.Context) (types.HealthResponse, error) {
	var resp types.HealthResponse
	agent, err := c.createAgent(ctx, http.MethodGet, routes.HealthCheckURL())
	if err != nil {
		return resp, err
	}
	return resp, doJSON(agent, &resp)
}

// GetConfig fetches the server's pipeline configuration
func (c *APIClient) GetConfig(ctx context.Context) (types.ConfigResponse, error) {
	var resp types.ConfigResponse
	agent, err := c.createAgent(ctx, http.MethodGet, routes.ConfigURL())
	if err != nil {
		return resp, err
	}
	return resp, doJSON(agent, &resp)
}

// CreateConversion submits a floorplan image and optional annotation file
func (c *APIClient) CreateConversion(ctx context.Context, imagePath, annotationPath string) (types.JobCreateResponse, error) {
	var resp types.JobCreateResponse

	agent, err := c.createAgent(ctx, http.MethodPost, routes.ConvertURL())
	if err != nil {
		return resp, err
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return resp, fmt.Errorf("reading floorplan image: %w", err)
	}
	files := []*fiber.FormFile{
		{Fieldname: "file", Name: filepath.Base(imagePath), Content: image},
	}

	if annotationPath != "" {
		annotation, err := os.ReadFile(annotationPath)
		if err != nil {
			return resp, fmt.Errorf("reading annotation file: %w", err)
		}
		files = append(files, &fiber.FormFile{
			Fieldname: "r2v_annotation",
			Name:      filepath.Base(annotationPath),
			Content:   annotation,
		})
	}

	agent.FileData(files...).MultipartForm(nil)
	return resp, doJSON(agent, &resp)
}

// GetJob fetches the status of a job
func (c *APIClient) GetJob(ctx context.Context, jobID string) (types.JobStatusResponse, error) {
	var resp types.JobStatusResponse
	agent, err := c.createAgent(ctx, http.MethodGet, routes.JobURL(jobID))
	if err != nil {
		return resp, err
	}
	return resp, doJSON(agent, &resp)
}

// DownloadScene saves a completed job's scene mesh to destPath
func (c *APIClient) DownloadScene(ctx context.Context, jobID, destPath string) error {
	return c.downloadFile(ctx, routes.DownloadSceneURL(jobID), destPath)
}

// DownloadWalkthrough saves a completed job's walkthrough video to destPath
func (c *APIClient) DownloadWalkthrough(ctx context.Context, jobID, destPath string) error {
	return c.downloadFile(ctx, routes.DownloadWalkthroughURL(jobID), destPath)
}

func (c *APIClient) downloadFile(ctx context.Context, endpoint, destPath string) error {
	agent, err := c.createAgent(ctx, http.MethodGet, endpoint)
	if err != nil {
		return err
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %v", errs[0])
	}
	if code >= http.StatusBadRequest {
		var apiErr types.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", code, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", code)
	}

	if err := os.WriteFile(destPath, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	return nil
}
