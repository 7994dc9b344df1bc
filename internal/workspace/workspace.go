// Package workspace namespaces all artifacts of one request under its session
// identifier so concurrent requests never collide on the shared work dir.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pictune/pictune-api/internal/logger"
)

// Workspace is the per-request artifact namespace. All paths for one session
// (uploaded image, per-song audio, merged output, generated images) live under
// a single root directory, keyed by session ID in the file names.
type Workspace struct {
	root      string
	sessionID string
}

// New ensures the work root exists and returns a workspace for the session.
func New(root, sessionID string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Workspace{root: root, sessionID: sessionID}, nil
}

func (w *Workspace) SessionID() string { return w.sessionID }

// ImagePath is the saved upload.
func (w *Workspace) ImagePath() string {
	return filepath.Join(w.root, w.sessionID+"_image.jpg")
}

// AudioBasePath is the per-song download destination without the extension;
// the acquisition tool appends ".mp3".
func (w *Workspace) AudioBasePath(idx int) string {
	return filepath.Join(w.root, fmt.Sprintf("%s_audio_%d", w.sessionID, idx))
}

// AudioPath is the finished per-song file.
func (w *Workspace) AudioPath(idx int) string {
	return w.AudioBasePath(idx) + ".mp3"
}

// MergedPath is the final concatenated playlist.
func (w *Workspace) MergedPath() string {
	return MergedPathFor(w.root, w.sessionID)
}

// ImageDest returns the output path for a generated image kind.
func (w *Workspace) ImageDest(kind string) string {
	return GeneratedImagePathFor(w.root, w.sessionID, kind)
}

// MergedPathFor resolves the merged playlist path for a session without a
// Workspace instance (used by the download handlers).
func MergedPathFor(root, sessionID string) string {
	return filepath.Join(root, "playlist_"+sessionID+".mp3")
}

// GeneratedImagePathFor resolves a generated image path for a session.
func GeneratedImagePathFor(root, sessionID, kind string) string {
	return filepath.Join(root, fmt.Sprintf("%s_%s.png", sessionID, kind))
}

// CleanupIntermediates removes the uploaded image and per-song audio files.
// Called only after the merged artifact is confirmed written (or on fatal
// paths). Best-effort: failures are logged, never escalated.
func (w *Workspace) CleanupIntermediates(songCount int) {
	paths := []string{w.ImagePath()}
	for i := 0; i < songCount; i++ {
		paths = append(paths, w.AudioPath(i))
	}
	Remove(paths...)
}

// CleanupAll removes every artifact of the session, including the merged file
// and generated images.
func (w *Workspace) CleanupAll(songCount int) {
	w.CleanupIntermediates(songCount)
	Remove(w.MergedPath(), w.ImageDest("thumbnail"), w.ImageDest("cover"))
}

// Remove deletes files best-effort.
func Remove(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to delete file", logger.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
}
