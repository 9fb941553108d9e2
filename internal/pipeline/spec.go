// Package pipeline contains the job orchestration core: declarative stage
// specifications, the stage executor, and the runner driving a job through its
// queued → processing → done/failed lifecycle.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sceneforge/sceneforge/internal/config"
	"github.com/sceneforge/sceneforge/internal/types"
)

// Dataset split and drop rate used for single-house inference, per the
// Plan2Scene Rent3D++ inference workflow.
const (
	inferenceSplit = "test"
	inferenceDrop  = "0.0"
)

// StageSpec declares one pipeline stage. A stage with an empty Command is
// simulated: the executor waits Delay and reports success.
type StageSpec struct {
	// Name identifies the stage in job status reporting
	Name string `yaml:"name"`

	// Command is the executable to invoke. Empty means a simulated stage.
	Command string `yaml:"command"`

	// Args are the command arguments. Values may contain the placeholders
	// {job_id}, {upload_dir}, {output_dir}, {data_root} and {annotation},
	// expanded per job before execution.
	Args []string `yaml:"args"`

	// Dir is the working directory for the command
	Dir string `yaml:"dir"`

	// Env holds environment overrides applied on top of the server's own
	// environment
	Env map[string]string `yaml:"env"`

	// Timeout is the wall-clock limit for this stage; zero means no limit
	Timeout time.Duration `yaml:"-"`

	// Delay is the fixed duration of a simulated stage
	Delay time.Duration `yaml:"-"`
}

// Vars carries the per-job values substituted into stage templates
type Vars struct {
	JobID      string
	UploadDir  string
	OutputDir  string
	DataRoot   string
	Annotation string
}

func (v Vars) expand(s string) string {
	r := strings.NewReplacer(
		"{job_id}", v.JobID,
		"{upload_dir}", v.UploadDir,
		"{output_dir}", v.OutputDir,
		"{data_root}", v.DataRoot,
		"{annotation}", v.Annotation,
	)
	return r.Replace(s)
}

// Set holds the stage sequences for every pipeline mode
type Set struct {
	modes map[types.PipelineMode][]StageSpec
}

// NewSet creates a pipeline set from explicit stage sequences
func NewSet(modes map[types.PipelineMode][]StageSpec) *Set {
	return &Set{modes: modes}
}

// StagesFor resolves the stage sequence for a mode, expanding the per-job
// template variables into each stage's arguments, directory and environment
func (s *Set) StagesFor(mode types.PipelineMode, vars Vars) ([]StageSpec, error) {
	templates, ok := s.modes[mode]
	if !ok {
		return nil, fmt.Errorf("no stage sequence for pipeline mode %q", mode)
	}

	stages := make([]StageSpec, len(templates))
	for i, tpl := range templates {
		stage := tpl
		stage.Args = make([]string, len(tpl.Args))
		for j, arg := range tpl.Args {
			stage.Args[j] = vars.expand(arg)
		}
		stage.Dir = vars.expand(tpl.Dir)
		if len(tpl.Env) > 0 {
			stage.Env = make(map[string]string, len(tpl.Env))
			for k, v := range tpl.Env {
				stage.Env[k] = vars.expand(v)
			}
		}
		stages[i] = stage
	}
	return stages, nil
}

// NewSetFromConfig builds the pipeline set for the server: the stage file if
// one is configured, otherwise the built-in sequences
func NewSetFromConfig(cfg *config.Config) (*Set, error) {
	if cfg.PipelinesFile != "" {
		return LoadFile(cfg.PipelinesFile)
	}
	return Defaults(cfg), nil
}

// Defaults returns the built-in stage sequences.
//
// The real sequences invoke the Plan2Scene and r2v-to-plan2scene scripts with
// the argument contract those repositories document. The demo sequence is four
// timed ticks; the sample assets are staged by the runner once the last tick
// completes.
func Defaults(cfg *config.Config) *Set {
	scripts := cfg.ScriptsRoot()

	demo := []StageSpec{
		{Name: "load_floorplan", Delay: cfg.DemoStageDelay},
		{Name: "synthesize_textures", Delay: cfg.DemoStageDelay},
		{Name: "assemble_scene", Delay: cfg.DemoStageDelay},
		{Name: "render_walkthrough", Delay: cfg.DemoStageDelay},
	}

	preprocessed := []StageSpec{
		{
			Name:    "gnn_texture_prop",
			Command: "python",
			Args: []string{
				filepath.Join(scripts, "texture_prop", "gnn_texture_prop.py"),
				"{upload_dir}", "{output_dir}", inferenceSplit,
				"--keep-existing-predictions",
			},
			Dir:     cfg.Plan2SceneRoot,
			Timeout: cfg.StageTimeout,
		},
		{
			Name:    "render_house_jsons",
			Command: "python",
			Args: []string{
				filepath.Join(scripts, "render_house_jsons.py"),
				filepath.Join("{output_dir}", "archs"),
				"--scene-json",
			},
			Dir:     cfg.Plan2SceneRoot,
			Timeout: cfg.StageTimeout,
		},
	}

	// Each preprocessing stage reads the previous stage's output from the
	// job-scoped data root.
	stageDir := filepath.Join("{data_root}", "processed")
	full := []StageSpec{
		{
			Name:    "convert_r2v",
			Command: "python",
			Args: []string{
				filepath.Join(cfg.R2VRoot, "convert.py"),
				filepath.Join("{output_dir}", "r2v_conversion"),
				"{annotation}",
				"--scale-factor", "0.08",
				"--r2v-annot",
			},
			Dir: cfg.R2VRoot,
			Env: map[string]string{
				"PYTHONPATH": filepath.Join(cfg.R2VRoot, "code", "src"),
			},
			Timeout: cfg.StageTimeout,
		},
		fullStage(cfg, "fill_room_embeddings", filepath.Join(scripts, "preprocessing", "fill_room_embeddings.py")),
		fullStage(cfg, "vgg_crop_selector", filepath.Join(scripts, "crop_select", "vgg_crop_selector.py")),
		fullStage(cfg, "gnn_texture_prop", filepath.Join(scripts, "texture_prop", "gnn_texture_prop.py")),
		fullStage(cfg, "seam_correct_textures", filepath.Join(scripts, "postprocessing", "seam_correct_textures.py")),
		fullStage(cfg, "embed_textures", filepath.Join(scripts, "postprocessing", "embed_textures.py")),
		{
			Name:    "render_house_jsons",
			Command: "python",
			Args: []string{
				filepath.Join(scripts, "render_house_jsons.py"),
				filepath.Join(stageDir, "embed_textures", inferenceSplit, "drop_"+inferenceDrop),
				"--output-dir", filepath.Join(stageDir, "renders", inferenceSplit, "drop_"+inferenceDrop),
				"--scene-json",
			},
			Dir:     cfg.Plan2SceneRoot,
			Timeout: cfg.StageTimeout,
		},
	}

	return NewSet(map[types.PipelineMode][]StageSpec{
		types.PipelineModeDemo:         demo,
		types.PipelineModePreprocessed: preprocessed,
		types.PipelineModeFull:         full,
	})
}

func fullStage(cfg *config.Config, name, script string) StageSpec {
	return StageSpec{
		Name:    name,
		Command: "python",
		Args:    []string{script, "{data_root}", inferenceSplit, "--drop", inferenceDrop},
		Dir:     cfg.Plan2SceneRoot,
		Timeout: cfg.StageTimeout,
	}
}

// stageFile mirrors StageSpec for YAML decoding; durations are strings in the
// file ("30s", "1m") and parsed here
type stageFile struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
	Timeout string            `yaml:"timeout"`
	Delay   string            `yaml:"delay"`
}

// LoadFile reads stage sequences from a YAML pipelines file. The file maps
// pipeline mode names to stage lists:
//
//	preprocessed:
//	  - name: gnn_texture_prop
//	    command: python
//	    args: ["gnn_texture_prop.py", "{upload_dir}", "{output_dir}", "test"]
//	    timeout: 30m
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipelines file: %w", err)
	}

	var raw map[string][]stageFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing pipelines file: %w", err)
	}

	modes := make(map[types.PipelineMode][]StageSpec, len(raw))
	for modeName, fileStages := range raw {
		mode, err := types.ParsePipelineMode(modeName)
		if err != nil {
			return nil, fmt.Errorf("pipelines file: %w", err)
		}

		stages := make([]StageSpec, len(fileStages))
		for i, fs := range fileStages {
			if fs.Name == "" {
				return nil, fmt.Errorf("pipelines file: stage %d of mode %q has no name", i, modeName)
			}
			stage := StageSpec{
				Name:    fs.Name,
				Command: fs.Command,
				Args:    fs.Args,
				Dir:     fs.Dir,
				Env:     fs.Env,
			}
			if fs.Timeout != "" {
				stage.Timeout, err = time.ParseDuration(fs.Timeout)
				if err != nil {
					return nil, fmt.Errorf("pipelines file: stage %q timeout: %w", fs.Name, err)
				}
			}
			if fs.Delay != "" {
				stage.Delay, err = time.ParseDuration(fs.Delay)
				if err != nil {
					return nil, fmt.Errorf("pipelines file: stage %q delay: %w", fs.Name, err)
				}
			}
			stages[i] = stage
		}
		modes[mode] = stages
	}

	return NewSet(modes), nil
}
