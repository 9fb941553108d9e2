package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sceneforge/sceneforge/internal/logger"
)

// Outcome reports the result of one stage execution
type Outcome struct {
	// Success is true when the stage exited cleanly
	Success bool

	// Output is the combined stdout and stderr of the stage
	Output string

	// Err holds the failure cause when Success is false
	Err error
}

// Executor runs individual pipeline stages.
//
// Real stages are external commands; a non-zero exit, a missing executable or
// an elapsed timeout is a failure with the combined output captured for
// diagnostics. Simulated stages are timed no-ops. Stages are never retried.
type Executor struct {
	gpuEnabled bool
}

// NewExecutor creates a stage executor. When gpuEnabled is false, child
// processes run with CUDA devices hidden so PyTorch falls back to the CPU.
func NewExecutor(gpuEnabled bool) *Executor {
	return &Executor{gpuEnabled: gpuEnabled}
}

// Run executes a single stage and reports its outcome
func (e *Executor) Run(ctx context.Context, stage StageSpec) Outcome {
	if stage.Command == "" {
		return e.simulate(ctx, stage)
	}
	return e.execute(ctx, stage)
}

func (e *Executor) simulate(ctx context.Context, stage StageSpec) Outcome {
	timer := time.NewTimer(stage.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return Outcome{Success: true}
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}
	}
}

func (e *Executor) execute(ctx context.Context, stage StageSpec) Outcome {
	runCtx := ctx
	if stage.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, stage.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, stage.Command, stage.Args...)
	if stage.Dir != "" {
		cmd.Dir = stage.Dir
	}

	env := os.Environ()
	if !e.gpuEnabled {
		// Hide GPUs from PyTorch so the scripts fall back to the CPU
		env = append(env, "CUDA_VISIBLE_DEVICES=", "FORCE_CPU=1")
	}
	for k, v := range stage.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.InfoWithFields("Executing stage command", map[string]interface{}{
		"stage":   stage.Name,
		"command": stage.Command,
		"args":    stage.Args,
		"dir":     stage.Dir,
	})

	err := cmd.Run()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("stage timed out after %s", stage.Timeout)
		}
		return Outcome{Output: out.String(), Err: err}
	}

	return Outcome{Success: true, Output: out.String()}
}
