package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*Publisher, string, string) {
	t.Helper()
	jobsDir := t.TempDir()
	demoDir := t.TempDir()
	return NewPublisher(jobsDir, demoDir), jobsDir, demoDir
}

func TestPublisher_URLsAndPaths(t *testing.T) {
	pub, jobsDir, _ := newTestPublisher(t)

	assert.Equal(t, "/static/jobs/j1/scene.glb", pub.ArtifactURL("j1", SceneArtifact))
	assert.Equal(t, "/static/jobs/j1/walkthrough.mp4", pub.ArtifactURL("j1", WalkthroughArtifact))
	assert.Equal(t, filepath.Join(jobsDir, "j1", "scene.glb"), pub.ArtifactPath("j1", SceneArtifact))
}

func TestPublisher_StageDemoAssetsCopies(t *testing.T) {
	pub, _, demoDir := newTestPublisher(t)
	require.NoError(t, os.WriteFile(filepath.Join(demoDir, SceneArtifact.File), []byte("scene"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(demoDir, WalkthroughArtifact.File), []byte("video"), 0o644))

	require.NoError(t, pub.StageDemoAssets("j1"))

	scene, err := os.ReadFile(pub.ArtifactPath("j1", SceneArtifact))
	require.NoError(t, err)
	assert.Equal(t, "scene", string(scene))

	video, err := os.ReadFile(pub.ArtifactPath("j1", WalkthroughArtifact))
	require.NoError(t, err)
	assert.Equal(t, "video", string(video))
}

func TestPublisher_StageDemoAssetsFallsBackToPlaceholders(t *testing.T) {
	pub, _, _ := newTestPublisher(t)

	// Demo directory is empty
	require.NoError(t, pub.StageDemoAssets("j1"))

	for _, artifact := range []Artifact{SceneArtifact, WalkthroughArtifact} {
		data, err := os.ReadFile(pub.ArtifactPath("j1", artifact))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestPublisher_PublishWritesPlaceholdersForMissingArtifacts(t *testing.T) {
	pub, _, _ := newTestPublisher(t)
	outDir, err := pub.EnsureOutputDir("j1")
	require.NoError(t, err)

	// Only the scene exists; the video must become a placeholder
	require.NoError(t, os.WriteFile(filepath.Join(outDir, SceneArtifact.File), []byte("real scene"), 0o644))

	sceneURL, videoURL, err := pub.Publish("j1")
	require.NoError(t, err)
	assert.Equal(t, "/static/jobs/j1/scene.glb", sceneURL)
	assert.Equal(t, "/static/jobs/j1/walkthrough.mp4", videoURL)

	scene, err := os.ReadFile(pub.ArtifactPath("j1", SceneArtifact))
	require.NoError(t, err)
	assert.Equal(t, "real scene", string(scene), "existing artifacts must not be overwritten")

	video, err := os.ReadFile(pub.ArtifactPath("j1", WalkthroughArtifact))
	require.NoError(t, err)
	assert.NotEmpty(t, video)
}

func TestPublisher_ImportArtifact(t *testing.T) {
	pub, _, _ := newTestPublisher(t)

	src := filepath.Join(t.TempDir(), "house.mp4")
	require.NoError(t, os.WriteFile(src, []byte("rendered"), 0o644))

	require.NoError(t, pub.ImportArtifact("j1", src, WalkthroughArtifact.File))

	data, err := os.ReadFile(pub.ArtifactPath("j1", WalkthroughArtifact))
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))
}
