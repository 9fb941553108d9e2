package types

// JobCreateResponse is returned when a conversion job is accepted
type JobCreateResponse struct {
	// Unique identifier of the created job
	JobID string `json:"job_id"`

	// Initial status of the job, always "queued"
	Status JobStatus `json:"status"`
}

// JobStatusResponse is the external representation of a job's state
type JobStatusResponse struct {
	JobID        string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	CurrentStage string    `json:"current_stage,omitempty"`
	FailedStage  string    `json:"failed_stage,omitempty"`
	Error        string    `json:"error,omitempty"`
	SceneURL     string    `json:"scene_url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
}

// ConfigResponse describes the process-wide pipeline configuration
type ConfigResponse struct {
	// Execution mode of the deployment, "demo" or "gpu"
	Mode string `json:"mode"`

	// Stage sequence used for GPU execution, "preprocessed" or "full"
	PipelineMode PipelineMode `json:"pipeline_mode"`

	// Whether the deployment runs stages on the GPU
	GPUEnabled bool `json:"gpu_enabled"`
}

// HealthResponse is returned by the health check endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	// Error message describing what went wrong
	Error string `json:"error"`
}

// ErrInvalidInput builds an error response for a rejected request
func ErrInvalidInput(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// ErrNotFound builds an error response for a missing resource
func ErrNotFound(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// ErrServer builds an error response for an internal failure
func ErrServer(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}
