// Package config loads the process-wide server configuration from the
// environment. Every setting has a usable default so the server can boot in
// demo mode with no configuration at all.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sceneforge/sceneforge/internal/logger"
	"github.com/sceneforge/sceneforge/internal/types"
)

// Execution modes. Demo simulates the pipeline; gpu shells out to the real
// Plan2Scene scripts.
const (
	ModeDemo = "demo"
	ModeGPU  = "gpu"
)

// Config holds the process-wide settings shared by the API layer and the
// pipeline runner
type Config struct {
	// Port the HTTP server listens on
	Port string

	// Mode is the execution mode, "demo" or "gpu"
	Mode string

	// PipelineMode selects the stage sequence for gpu execution,
	// "preprocessed" or "full"
	PipelineMode types.PipelineMode

	// UploadDir receives submitted floorplan images and annotation files
	UploadDir string

	// JobsDir holds per-job output directories, served under /static/jobs
	JobsDir string

	// DemoAssetsDir contains the pre-built sample artifacts copied in demo mode
	DemoAssetsDir string

	// Plan2SceneRoot is the checkout of the Plan2Scene research repository
	Plan2SceneRoot string

	// Plan2SceneDataRoot overrides the Plan2Scene data directory.
	// Empty means Plan2SceneRoot/data.
	Plan2SceneDataRoot string

	// R2VRoot is the checkout of the r2v-to-plan2scene converter
	R2VRoot string

	// GPUEnabled controls whether real stages may use the GPU. When false the
	// executor hides CUDA devices from the child process.
	GPUEnabled bool

	// StageTimeout is the wall-clock limit for a single real stage.
	// Zero disables the limit.
	StageTimeout time.Duration

	// DemoStageDelay is the fixed duration of one simulated demo stage
	DemoStageDelay time.Duration

	// PipelinesFile optionally points at a YAML file overriding the built-in
	// stage sequences
	PipelinesFile string
}

// Load reads the configuration from the environment
func Load() *Config {
	cfg := &Config{
		Port:               GetEnv("PORT", "8080"),
		Mode:               GetEnv("MODE", ModeDemo),
		PipelineMode:       types.PipelineMode(GetEnv("PIPELINE_MODE", string(types.PipelineModePreprocessed))),
		UploadDir:          GetEnv("UPLOAD_DIR", "uploads"),
		JobsDir:            GetEnv("JOBS_DIR", filepath.Join("static", "jobs")),
		DemoAssetsDir:      GetEnv("DEMO_ASSETS_DIR", "demo_assets"),
		Plan2SceneRoot:     GetEnv("PLAN2SCENE_ROOT", "../plan2scene"),
		Plan2SceneDataRoot: GetEnv("PLAN2SCENE_DATA_ROOT", ""),
		R2VRoot:            GetEnv("R2V_TO_PLAN2SCENE_ROOT", "../r2v-to-plan2scene"),
		GPUEnabled:         getEnvBool("PLAN2SCENE_GPU_ENABLED", true),
		StageTimeout:       getEnvDuration("STAGE_TIMEOUT", 0),
		DemoStageDelay:     getEnvDuration("DEMO_STAGE_DELAY", time.Second),
		PipelinesFile:      GetEnv("PIPELINES_FILE", ""),
	}

	if _, err := types.ParsePipelineMode(string(cfg.PipelineMode)); err != nil {
		logger.Warnf("Invalid PIPELINE_MODE %q, defaulting to %q", cfg.PipelineMode, types.PipelineModePreprocessed)
		cfg.PipelineMode = types.PipelineModePreprocessed
	}

	return cfg
}

// EffectiveMode resolves the pipeline mode assigned to new jobs: demo when the
// server runs in demo mode, otherwise the configured gpu stage sequence.
func (c *Config) EffectiveMode() types.PipelineMode {
	if c.Mode == ModeDemo {
		return types.PipelineModeDemo
	}
	return c.PipelineMode
}

// DataRoot computes the Plan2Scene data directory, defaulting to
// Plan2SceneRoot/data when not explicitly configured
func (c *Config) DataRoot() string {
	if c.Plan2SceneDataRoot != "" {
		return c.Plan2SceneDataRoot
	}
	return filepath.Join(c.Plan2SceneRoot, "data")
}

// ScriptsRoot returns the directory holding the Plan2Scene pipeline scripts
func (c *Config) ScriptsRoot() string {
	return filepath.Join(c.Plan2SceneRoot, "code", "scripts", "plan2scene")
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warnf("Invalid boolean for %s: %q, using default", key, value)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warnf("Invalid duration for %s: %q, using default", key, value)
		return fallback
	}
	return parsed
}
