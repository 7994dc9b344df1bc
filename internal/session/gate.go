package session

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pictune/pictune-api/internal/logger"
)

const (
	// maxCapturedAge is how long an auto-captured cookie file stays usable.
	maxCapturedAge = 6 * time.Hour

	mountedFileName  = "cookies.txt"
	capturedFileName = "youtube_cookies.txt"

	netscapeHeader = "# Netscape HTTP Cookie File"
)

// RefreshStatus classifies the outcome of a forced refresh.
type RefreshStatus string

const (
	RefreshSuccess RefreshStatus = "success"
	RefreshPartial RefreshStatus = "partial"
	RefreshFailed  RefreshStatus = "failed"
)

// Gate decides whether a previously captured session artifact is still usable
// or must be regenerated. Reads are lock-free; only regeneration is serialized
// so concurrent requests never trigger overlapping login runs.
type Gate struct {
	mountedPath  string
	capturedPath string
	refresher    Refresher
	maxAge       time.Duration

	regenMu sync.Mutex

	now func() time.Time
}

// NewGate builds a gate over the cookie directory. The refresher may be nil,
// in which case regeneration is skipped and stale artifacts are returned
// as-is.
func NewGate(cookieDir string, refresher Refresher) *Gate {
	return &Gate{
		mountedPath:  filepath.Join(cookieDir, mountedFileName),
		capturedPath: filepath.Join(cookieDir, capturedFileName),
		refresher:    refresher,
		maxAge:       maxCapturedAge,
		now:          time.Now,
	}
}

// Resolve returns the artifact acquisition should use, or nil for
// unauthenticated attempts. A mounted artifact always wins regardless of age;
// a captured artifact older than the threshold is regenerated first.
// Regeneration failure degrades to whatever exists, never an error.
func (g *Gate) Resolve(ctx context.Context) *Artifact {
	if art := statArtifact(g.mountedPath, OriginMounted); art != nil {
		logger.Debug("Using mounted cookie file", logger.Fields{"path": art.Path, "size": art.Size})
		return art
	}

	if art := statArtifact(g.capturedPath, OriginCaptured); art != nil {
		age := g.now().Sub(art.CapturedAt)
		if age <= g.maxAge {
			logger.Debug("Using captured cookie file", logger.Fields{
				"path":      art.Path,
				"age_hours": age.Hours(),
			})
			return art
		}
		logger.Info("Captured cookies are stale, regenerating", logger.Fields{
			"age_hours": age.Hours(),
		})
		g.regenerate(ctx)
		return statArtifact(g.capturedPath, OriginCaptured)
	}

	g.regenerate(ctx)
	return statArtifact(g.capturedPath, OriginCaptured)
}

// ForceRefresh runs the login helper unconditionally and classifies the
// result: success when the helper verified login and a plausible cookie file
// exists, partial when a file was written but login is unverified, failed
// otherwise.
func (g *Gate) ForceRefresh(ctx context.Context) RefreshStatus {
	err := g.regenerate(ctx)

	art := statArtifact(g.capturedPath, OriginCaptured)
	switch {
	case art == nil:
		return RefreshFailed
	case err != nil || !hasNetscapeHeader(art.Path):
		return RefreshPartial
	default:
		return RefreshSuccess
	}
}

func (g *Gate) regenerate(ctx context.Context) error {
	if g.refresher == nil {
		logger.Warn("No cookie refresher configured, proceeding without session", nil)
		return nil
	}

	g.regenMu.Lock()
	defer g.regenMu.Unlock()

	if err := g.refresher.Refresh(ctx); err != nil {
		// Degrades to unauthenticated downloads; not a request failure.
		logger.Warn("Cookie regeneration failed", logger.Fields{"error": err.Error()})
		return err
	}
	return nil
}

func hasNetscapeHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	return strings.HasPrefix(scanner.Text(), netscapeHeader)
}
