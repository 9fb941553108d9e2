package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    JobStatus
		wantErr bool
	}{
		{name: "queued", input: "queued", want: JobStatusQueued},
		{name: "processing", input: "processing", want: JobStatusProcessing},
		{name: "done", input: "done", want: JobStatusDone},
		{name: "failed", input: "failed", want: JobStatusFailed},
		{name: "unknown token", input: "cancelled", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJobStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseJobStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseJobStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusUnknown:    false,
		JobStatusQueued:     false,
		JobStatusProcessing: false,
		JobStatusDone:       true,
		JobStatusFailed:     true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestJobStatus_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(JobStatusProcessing)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"processing"` {
		t.Errorf("Marshal = %s, want %q", data, "processing")
	}

	var status JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if status != JobStatusProcessing {
		t.Errorf("Unmarshal = %v, want %v", status, JobStatusProcessing)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &status); err == nil {
		t.Error("Unmarshal of invalid status should fail")
	}
}

func TestParsePipelineMode(t *testing.T) {
	for _, valid := range []string{"demo", "preprocessed", "full"} {
		mode, err := ParsePipelineMode(valid)
		if err != nil {
			t.Errorf("ParsePipelineMode(%q) unexpected error: %v", valid, err)
		}
		if string(mode) != valid {
			t.Errorf("ParsePipelineMode(%q) = %q", valid, mode)
		}
	}

	if _, err := ParsePipelineMode("turbo"); err == nil || !strings.Contains(err.Error(), "invalid pipeline mode") {
		t.Errorf("ParsePipelineMode(turbo) error = %v, want invalid pipeline mode", err)
	}
}

func TestJob_StatusResponse(t *testing.T) {
	job := Job{
		JobID:       "abc123",
		Status:      JobStatusFailed,
		FailedStage: "gnn_texture_prop",
		Error:       "exit status 1",
	}

	resp := job.StatusResponse()
	if resp.JobID != job.JobID || resp.Status != job.Status ||
		resp.FailedStage != job.FailedStage || resp.Error != job.Error {
		t.Errorf("StatusResponse() = %+v, does not mirror job %+v", resp, job)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "scene_url") || strings.Contains(string(data), "current_stage") {
		t.Errorf("empty optional fields should be omitted, got %s", data)
	}
}
