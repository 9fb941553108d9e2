package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecutor_SimulatedStage(t *testing.T) {
	e := NewExecutor(true)

	start := time.Now()
	outcome := e.Run(context.Background(), StageSpec{Name: "tick", Delay: 50 * time.Millisecond})

	assert.True(t, outcome.Success)
	assert.NoError(t, outcome.Err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestExecutor_SimulatedStageCancelled(t *testing.T) {
	e := NewExecutor(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := e.Run(ctx, StageSpec{Name: "tick", Delay: time.Minute})
	assert.False(t, outcome.Success)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestExecutor_CommandSuccessCapturesOutput(t *testing.T) {
	e := NewExecutor(true)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "echo",
		Command: "sh",
		Args:    []string{"-c", "echo stage output"},
	})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Output, "stage output")
}

func TestExecutor_CommandFailureCapturesStderr(t *testing.T) {
	e := NewExecutor(true)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "boom",
		Command: "sh",
		Args:    []string{"-c", "echo diagnostics >&2; exit 3"},
	})

	assert.False(t, outcome.Success)
	assert.Error(t, outcome.Err)
	assert.Contains(t, outcome.Output, "diagnostics")
}

func TestExecutor_CommandNotFound(t *testing.T) {
	e := NewExecutor(true)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "missing",
		Command: "definitely-not-a-real-binary-7f3a",
	})

	assert.False(t, outcome.Success)
	assert.Error(t, outcome.Err)
}

func TestExecutor_EnvOverrides(t *testing.T) {
	e := NewExecutor(true)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "env",
		Command: "sh",
		Args:    []string{"-c", "echo value=$STAGE_SETTING"},
		Env:     map[string]string{"STAGE_SETTING": "from-spec"},
	})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Output, "value=from-spec")
}

func TestExecutor_CPUFallbackEnv(t *testing.T) {
	e := NewExecutor(false)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "env",
		Command: "sh",
		Args:    []string{"-c", `echo "force_cpu=$FORCE_CPU cuda=[$CUDA_VISIBLE_DEVICES]"`},
	})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Output, "force_cpu=1")
	assert.Contains(t, outcome.Output, "cuda=[]")
}

func TestExecutor_GPUEnabledKeepsDevicesVisible(t *testing.T) {
	e := NewExecutor(true)

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "env",
		Command: "sh",
		Args:    []string{"-c", `echo "force_cpu=[$FORCE_CPU]"`},
	})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Output, "force_cpu=[]")
}

func TestExecutor_StageTimeout(t *testing.T) {
	e := NewExecutor(true)

	start := time.Now()
	outcome := e.Run(context.Background(), StageSpec{
		Name:    "slow",
		Command: "sleep",
		Args:    []string{"5"},
		Timeout: 100 * time.Millisecond,
	})

	assert.False(t, outcome.Success)
	assert.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecutor_WorkingDirectory(t *testing.T) {
	e := NewExecutor(true)
	dir := t.TempDir()

	outcome := e.Run(context.Background(), StageSpec{
		Name:    "pwd",
		Command: "sh",
		Args:    []string{"-c", "pwd"},
		Dir:     dir,
	})

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Output, dir)
}
