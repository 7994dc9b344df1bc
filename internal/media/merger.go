package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pictune/pictune-api/internal/logger"
)

// Merger concatenates downloaded audio files into one output track using
// ffmpeg's concat demuxer. Input order is significant and preserved.
type Merger struct {
	ffmpeg string
	runner Runner
}

func NewMerger(ffmpegPath string) *Merger {
	return &Merger{ffmpeg: ffmpegPath, runner: ExecRunner{}}
}

// WithRunner overrides the tool runner. Test hook.
func (m *Merger) WithRunner(r Runner) *Merger {
	m.runner = r
	return m
}

// Merge concatenates inputs, in the given order, into output.
func (m *Merger) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no audio files to merge")
	}

	listPath := output + ".list"
	if err := writeConcatList(listPath, inputs); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(listPath); err != nil {
			logger.Warn("Failed to remove concat list", logger.Fields{"path": listPath})
		}
	}()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-codec:a", "libmp3lame",
		"-b:a", "192k",
		output,
	}
	if err := m.runner.Run(ctx, m.ffmpeg, args...); err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}

	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		return fmt.Errorf("merged output missing or empty at %s", output)
	}
	return nil
}

// writeConcatList writes the ffmpeg concat demuxer list file. Paths are made
// absolute and single quotes escaped per the demuxer's quoting rules.
func writeConcatList(listPath string, inputs []string) error {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve input path %s: %w", input, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
