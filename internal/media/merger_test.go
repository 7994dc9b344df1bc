package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureListRunner snapshots the concat list while it still exists and
// writes the output file.
type captureListRunner struct {
	listContents string
	failWith     error
	skipOutput   bool
}

func (r *captureListRunner) Run(_ context.Context, _ string, args ...string) error {
	if r.failWith != nil {
		return r.failWith
	}

	var listPath string
	for i, arg := range args {
		if arg == "-i" && i+1 < len(args) {
			listPath = args[i+1]
		}
	}
	if listPath != "" {
		data, err := os.ReadFile(listPath)
		if err != nil {
			return err
		}
		r.listContents = string(data)
	}

	if !r.skipOutput {
		output := args[len(args)-1]
		return os.WriteFile(output, []byte("merged audio"), 0o644)
	}
	return nil
}

func TestMerge_PreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		filepath.Join(dir, "audio_0.mp3"),
		filepath.Join(dir, "audio_2.mp3"),
	}
	output := filepath.Join(dir, "playlist.mp3")

	runner := &captureListRunner{}
	merger := NewMerger("/usr/bin/ffmpeg").WithRunner(runner)

	require.NoError(t, merger.Merge(context.Background(), inputs, output))

	lines := strings.Split(strings.TrimSpace(runner.listContents), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "audio_0.mp3")
	assert.Contains(t, lines[1], "audio_2.mp3")

	// List file is removed after the merge
	_, err := os.Stat(output + ".list")
	assert.True(t, os.IsNotExist(err))
}

func TestMerge_EscapesQuotesInPaths(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "don't stop.mp3")
	output := filepath.Join(dir, "playlist.mp3")

	runner := &captureListRunner{}
	merger := NewMerger("/usr/bin/ffmpeg").WithRunner(runner)

	require.NoError(t, merger.Merge(context.Background(), []string{input}, output))
	assert.Contains(t, runner.listContents, `don'\''t stop.mp3`)
}

func TestMerge_NoInputs(t *testing.T) {
	merger := NewMerger("/usr/bin/ffmpeg").WithRunner(&captureListRunner{})
	err := merger.Merge(context.Background(), nil, "out.mp3")
	assert.Error(t, err)
}

func TestMerge_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	runner := &captureListRunner{failWith: errors.New("invalid data")}
	merger := NewMerger("/usr/bin/ffmpeg").WithRunner(runner)

	err := merger.Merge(context.Background(), []string{filepath.Join(dir, "a.mp3")}, filepath.Join(dir, "out.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concat failed")
}

func TestMerge_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	runner := &captureListRunner{skipOutput: true}
	merger := NewMerger("/usr/bin/ffmpeg").WithRunner(runner)

	err := merger.Merge(context.Background(), []string{filepath.Join(dir, "a.mp3")}, filepath.Join(dir, "out.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing or empty")
}
