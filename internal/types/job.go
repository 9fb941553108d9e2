package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus represents the current state of a conversion job
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusQueued indicates the job has been accepted but the pipeline has not started
	JobStatusQueued
	// JobStatusProcessing indicates a pipeline stage is currently executing
	JobStatusProcessing
	// JobStatusDone indicates the pipeline finished and output artifacts are available
	JobStatusDone
	// JobStatusFailed indicates a pipeline stage failed; the job will not run again
	JobStatusFailed
)

var jobStatusNames = []string{
	"unknown",
	"queued",
	"processing",
	"done",
	"failed",
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}
	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if s < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// Terminal reports whether the status is final. Terminal jobs never transition again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// PipelineMode selects which stage sequence applies to a job.
// It is fixed at job creation from the server configuration.
type PipelineMode string

// Pipeline mode constants
const (
	// PipelineModeDemo runs simulated stages and copies pre-built sample assets
	PipelineModeDemo PipelineMode = "demo"
	// PipelineModePreprocessed runs texture propagation and rendering against
	// preprocessed Rent3D++ data
	PipelineModePreprocessed PipelineMode = "preprocessed"
	// PipelineModeFull runs the complete pipeline from R2V vectors to final outputs
	PipelineModeFull PipelineMode = "full"
)

// ParsePipelineMode validates a string representation of a pipeline mode
func ParsePipelineMode(str string) (PipelineMode, error) {
	switch PipelineMode(str) {
	case PipelineModeDemo, PipelineModePreprocessed, PipelineModeFull:
		return PipelineMode(str), nil
	}
	return "", fmt.Errorf("invalid pipeline mode: %s", str)
}

// Job represents a floorplan conversion job.
//
// A job is created in JobStatusQueued and is mutated exclusively by the
// pipeline runner during its single run. CurrentStage is populated only while
// the job is processing; SceneURL and VideoURL only once it is done;
// FailedStage and Error only once it has failed.
type Job struct {
	JobID        string       `json:"job_id"`
	Status       JobStatus    `json:"status"`
	CurrentStage string       `json:"current_stage,omitempty"`
	FailedStage  string       `json:"failed_stage,omitempty"`
	Error        string       `json:"error,omitempty"`
	SceneURL     string       `json:"scene_url,omitempty"`
	VideoURL     string       `json:"video_url,omitempty"`
	PipelineMode PipelineMode `json:"pipeline_mode"`
	CreatedAt    time.Time    `json:"created_at"`
}

// StatusResponse builds the external status representation of the job
func (j Job) StatusResponse() JobStatusResponse {
	return JobStatusResponse{
		JobID:        j.JobID,
		Status:       j.Status,
		CurrentStage: j.CurrentStage,
		FailedStage:  j.FailedStage,
		Error:        j.Error,
		SceneURL:     j.SceneURL,
		VideoURL:     j.VideoURL,
	}
}
