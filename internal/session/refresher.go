package session

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pictune/pictune-api/internal/logger"
)

// refreshTimeout bounds one login-and-export run. The helper drives a
// headless browser, so this is generous but not unbounded.
const refreshTimeout = 3 * time.Minute

// ExecRefresher invokes the login-and-export helper as a subprocess. The
// helper logs into the media platform in a private browser session and writes
// the cookies out in Netscape format.
type ExecRefresher struct {
	Command string
}

// NewExecRefresher returns nil when no command is configured, which disables
// automatic regeneration.
func NewExecRefresher(command string) *ExecRefresher {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return &ExecRefresher{Command: command}
}

// Refresh runs the helper and waits for it synchronously.
func (r *ExecRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	parts := strings.Fields(r.Command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("login helper failed: %w (output: %s)", err, truncateOutput(output))
	}

	logger.Info("Login helper completed", logger.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func truncateOutput(output []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(output))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
