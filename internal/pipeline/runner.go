package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sceneforge/sceneforge/internal/assets"
	"github.com/sceneforge/sceneforge/internal/logger"
	"github.com/sceneforge/sceneforge/internal/store"
	"github.com/sceneforge/sceneforge/internal/types"
)

// maxErrorDetail bounds how much captured stage output is retained in the
// job's error field
const maxErrorDetail = 2000

// Input carries the uploaded files handed to a job's pipeline run
type Input struct {
	// UploadPath is the stored floorplan image
	UploadPath string

	// AnnotationPath is the stored R2V annotation file, empty when the client
	// did not provide one
	AnnotationPath string
}

// Runner executes a job's stage sequence in a background goroutine and owns
// all job mutations after creation.
//
// A launched run always reaches a terminal state: every exit path records
// done or failed, and a deferred guard converts panics and abandoned runs
// into failed rather than leaving the job processing forever.
type Runner struct {
	store *store.Store
	exec  *Executor
	pub   *assets.Publisher
	pipes *Set
}

// NewRunner creates a pipeline runner
func NewRunner(s *store.Store, exec *Executor, pub *assets.Publisher, pipes *Set) *Runner {
	return &Runner{store: s, exec: exec, pub: pub, pipes: pipes}
}

// Launch starts the job's pipeline in a new goroutine. The caller never joins
// it; completion is observed through the job store.
func (r *Runner) Launch(job types.Job, in Input) {
	go r.run(job, in)
}

func (r *Runner) run(job types.Job, in Input) {
	jobID := job.JobID
	defer r.finalize(jobID)

	outDir, err := r.pub.EnsureOutputDir(jobID)
	if err != nil {
		r.fail(jobID, "", err.Error())
		return
	}

	vars := Vars{
		JobID:      jobID,
		UploadDir:  filepath.Dir(in.UploadPath),
		OutputDir:  outDir,
		DataRoot:   filepath.Join(outDir, "plan2scene_data"),
		Annotation: in.AnnotationPath,
	}

	stages, err := r.pipes.StagesFor(job.PipelineMode, vars)
	if err != nil {
		r.fail(jobID, "", err.Error())
		return
	}
	if len(stages) == 0 {
		r.fail(jobID, "", fmt.Sprintf("pipeline mode %q has no stages", job.PipelineMode))
		return
	}

	if job.PipelineMode == types.PipelineModeFull && in.AnnotationPath == "" {
		r.fail(jobID, stages[0].Name,
			"the full pipeline requires an R2V annotation file alongside the floorplan image")
		return
	}

	// queued -> processing, entering the first stage
	if _, err := r.store.Update(jobID, func(j *types.Job) {
		j.Status = types.JobStatusProcessing
		j.CurrentStage = stages[0].Name
	}); err != nil {
		logger.Errorf("Job %s vanished before processing: %v", jobID, err)
		return
	}

	for _, stage := range stages {
		if _, err := r.store.Update(jobID, func(j *types.Job) {
			j.CurrentStage = stage.Name
		}); err != nil {
			return
		}

		logger.InfoWithFields("Stage started", map[string]interface{}{
			"job_id": jobID,
			"stage":  stage.Name,
			"mode":   string(job.PipelineMode),
		})

		outcome := r.exec.Run(context.Background(), stage)
		if !outcome.Success {
			r.fail(jobID, stage.Name, failureDetail(stage, outcome))
			return
		}

		logger.InfoWithFields("Stage completed", map[string]interface{}{
			"job_id": jobID,
			"stage":  stage.Name,
		})
	}

	switch job.PipelineMode {
	case types.PipelineModeDemo:
		if err := r.pub.StageDemoAssets(jobID); err != nil {
			r.fail(jobID, stages[len(stages)-1].Name, err.Error())
			return
		}
	case types.PipelineModeFull:
		r.collectFullOutputs(jobID, vars)
	}

	sceneURL, videoURL, err := r.pub.Publish(jobID)
	if err != nil {
		r.fail(jobID, stages[len(stages)-1].Name, err.Error())
		return
	}

	if _, err := r.store.Update(jobID, func(j *types.Job) {
		j.Status = types.JobStatusDone
		j.CurrentStage = ""
		j.SceneURL = sceneURL
		j.VideoURL = videoURL
	}); err != nil {
		logger.Errorf("Job %s vanished before completion: %v", jobID, err)
		return
	}

	logger.Infof("Job %s completed successfully", jobID)
}

// collectFullOutputs copies the full pipeline's rendered video and embedded
// scene description from the job's data root into the output directory. The
// renderer names its outputs after the house id, which is only known to the
// external scripts, so the files are located by pattern.
func (r *Runner) collectFullOutputs(jobID string, vars Vars) {
	renders := filepath.Join(vars.DataRoot, "processed", "renders", inferenceSplit, "drop_"+inferenceDrop)
	if matches, _ := filepath.Glob(filepath.Join(renders, "*.mp4")); len(matches) > 0 {
		if err := r.pub.ImportArtifact(jobID, matches[0], assets.WalkthroughArtifact.File); err != nil {
			logger.Warnf("Job %s: importing rendered video: %v", jobID, err)
		}
	}

	embedded := filepath.Join(vars.DataRoot, "processed", "embed_textures", inferenceSplit, "drop_"+inferenceDrop)
	if matches, _ := filepath.Glob(filepath.Join(embedded, "*.scene.json")); len(matches) > 0 {
		if err := r.pub.ImportArtifact(jobID, matches[0], "scene.scene.json"); err != nil {
			logger.Warnf("Job %s: importing embedded scene: %v", jobID, err)
		}
	}
}

// fail records the terminal failed state. It never overwrites a state that is
// already terminal.
func (r *Runner) fail(jobID, stage, detail string) {
	_, err := r.store.Update(jobID, func(j *types.Job) {
		if j.Status.Terminal() {
			return
		}
		j.Status = types.JobStatusFailed
		j.CurrentStage = ""
		j.FailedStage = stage
		j.Error = detail
	})
	if err != nil {
		logger.Errorf("Recording failure for job %s: %v", jobID, err)
		return
	}

	logger.ErrorWithFields("Job failed", map[string]interface{}{
		"job_id": jobID,
		"stage":  stage,
		"error":  detail,
	})
}

// finalize guarantees a terminal store update even when a stage or the runner
// itself panics mid-run
func (r *Runner) finalize(jobID string) {
	if rec := recover(); rec != nil {
		job, err := r.store.Get(jobID)
		stage := ""
		if err == nil {
			stage = job.CurrentStage
		}
		r.fail(jobID, stage, fmt.Sprintf("internal error: %v", rec))
		return
	}

	job, err := r.store.Get(jobID)
	if err == nil && !job.Status.Terminal() {
		r.fail(jobID, job.CurrentStage, "pipeline exited without reaching a terminal state")
	}
}

func failureDetail(stage StageSpec, outcome Outcome) string {
	msg := fmt.Sprintf("stage %s failed: %v", stage.Name, outcome.Err)
	if tail := strings.TrimSpace(tailOf(outcome.Output, maxErrorDetail)); tail != "" {
		msg += "\n" + tail
	}
	return msg
}

func tailOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
