// Package media acquires per-song audio from the public video platform and
// concatenates the results, driving yt-dlp and ffmpeg as subprocesses.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external media tool. Extracted so the retry ladders can
// be tested without the real binaries.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs tools via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (output: %s)", name, err, lastLines(output, 5))
	}
	return nil
}

// lastLines keeps the tail of tool output, where yt-dlp and ffmpeg put the
// actual error.
func lastLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
