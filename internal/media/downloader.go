package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pictune/pictune-api/internal/logger"
)

const (
	// audioBitrate is the fixed target bitrate for extracted audio, chosen for
	// compatibility with the concatenation step.
	audioBitrate = "192K"

	// socketTimeoutSeconds and connection retry counts are passed through to
	// yt-dlp. These cover transient network failures and are separate from the
	// query-fallback ladder.
	socketTimeoutSeconds = 60
	connectionRetries    = 3

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// FailureCause classifies a per-song acquisition failure.
type FailureCause string

const (
	CauseSearchEmpty FailureCause = "search-empty"
	CauseTimeout     FailureCause = "download-timeout"
	CauseToolError   FailureCause = "tool-error"
)

// AcquisitionError is a per-song failure after the full query ladder. It is
// recorded in the manifest by the caller, never escalated on its own.
type AcquisitionError struct {
	Query string
	Cause FailureCause
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed (%s) for query %q: %v", e.Cause, e.Query, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Downloader resolves one (title, artist) pair to a downloaded MP3 via
// platform search.
type Downloader struct {
	ytdlp   string
	ffmpeg  string
	timeout time.Duration
	runner  Runner
}

func NewDownloader(ytdlpPath, ffmpegPath string, timeout time.Duration) *Downloader {
	return &Downloader{
		ytdlp:   ytdlpPath,
		ffmpeg:  ffmpegPath,
		timeout: timeout,
		runner:  ExecRunner{},
	}
}

// WithRunner overrides the tool runner. Test hook.
func (d *Downloader) WithRunner(r Runner) *Downloader {
	d.runner = r
	return d
}

// Acquire searches the platform for the song and downloads its audio to
// destBase + ".mp3". The primary query carries a qualifier biasing toward
// official studio recordings; if it yields no file, exactly one relaxed
// fallback query is attempted before declaring failure. cookieFile may be
// empty for unauthenticated attempts.
func (d *Downloader) Acquire(ctx context.Context, title, artist, destBase, cookieFile string) (string, error) {
	primary := strings.TrimSpace(fmt.Sprintf("%s %s official audio", title, artist))
	relaxed := strings.TrimSpace(fmt.Sprintf("%s %s", title, artist))
	ladder := []string{primary, relaxed}

	dest := destBase + ".mp3"
	var lastErr *AcquisitionError

	for _, query := range ladder {
		logger.Info("Searching platform", logger.Fields{"query": query})

		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := d.runner.Run(attemptCtx, d.ytdlp, d.searchArgs(query, destBase, cookieFile)...)
		cancel()

		if err != nil {
			cause := CauseToolError
			if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
				cause = CauseTimeout
			}
			lastErr = &AcquisitionError{Query: query, Cause: cause, Err: err}
			logger.Warn("Search attempt failed", logger.Fields{
				"query": query,
				"cause": string(cause),
				"error": err.Error(),
			})
			continue
		}

		// yt-dlp exiting zero does not guarantee a usable file; trust only
		// the filesystem.
		if info, statErr := os.Stat(dest); statErr == nil && info.Size() > 0 {
			logger.Info("Download succeeded", logger.Fields{"title": title, "artist": artist})
			return dest, nil
		}

		lastErr = &AcquisitionError{
			Query: query,
			Cause: CauseSearchEmpty,
			Err:   fmt.Errorf("no output file at %s", dest),
		}
	}

	return "", lastErr
}

func (d *Downloader) searchArgs(query, destBase, cookieFile string) []string {
	args := []string{
		fmt.Sprintf("ytsearch1:%s", query),
		"-f", "ba/b/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", audioBitrate,
		"-o", destBase + ".%(ext)s",
		"--no-check-certificates",
		"--socket-timeout", fmt.Sprintf("%d", socketTimeoutSeconds),
		"--retries", fmt.Sprintf("%d", connectionRetries),
		"--fragment-retries", fmt.Sprintf("%d", connectionRetries),
		"--user-agent", userAgent,
		"--ffmpeg-location", d.ffmpeg,
	}
	if cookieFile != "" {
		args = append(args, "--cookies", cookieFile)
	}
	return args
}
