// Package session manages the authenticated cookie bundle that acquisition
// attaches to media downloads. A manually exported cookie file always beats an
// auto-captured one; auto-captured cookies go stale after a fixed age and are
// regenerated on demand by an external login helper.
package session

import (
	"context"
	"os"
	"time"
)

// Origin tags how a session artifact came to exist.
type Origin string

const (
	// OriginMounted is an externally-supplied cookie file (manual export).
	OriginMounted Origin = "mounted"
	// OriginCaptured is a cookie file produced by the login helper.
	OriginCaptured Origin = "captured"
)

// Artifact is a usable cookie bundle. Read-shared across a download batch,
// never mutated mid-batch.
type Artifact struct {
	Path       string
	Origin     Origin
	CapturedAt time.Time
	Size       int64
}

// minArtifactSize filters out placeholder or truncated cookie files.
const minArtifactSize = 100

// statArtifact returns an Artifact for the file if it exists and is plausibly
// a real cookie export.
func statArtifact(path string, origin Origin) *Artifact {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= minArtifactSize {
		return nil
	}
	return &Artifact{
		Path:       path,
		Origin:     origin,
		CapturedAt: info.ModTime(),
		Size:       info.Size(),
	}
}

// Refresher is the external login-and-export collaborator. Refresh blocks
// until the helper finishes; a non-nil error means login could not be
// verified, which downgrades the refresh, not the request.
type Refresher interface {
	Refresh(ctx context.Context) error
}
