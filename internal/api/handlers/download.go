package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pictune/pictune-api/internal/workspace"
)

type DownloadHandler struct {
	workDir string
}

func NewDownloadHandler(workDir string) *DownloadHandler {
	return &DownloadHandler{workDir: workDir}
}

// Playlist streams the merged MP3 for a session and schedules its removal
// shortly after, so one session cannot occupy disk indefinitely.
func (h *DownloadHandler) Playlist(c *gin.Context) {
	sessionID := c.Param("session_id")
	path := workspace.MergedPathFor(h.workDir, sessionID)

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "File not found or expired",
		})
		return
	}

	time.AfterFunc(downloadCleanupDelay, func() {
		workspace.Remove(path)
	})

	c.FileAttachment(path, fmt.Sprintf("playlist_%s.mp3", sessionID))
}

// Image streams a generated playlist image. The type query selects between
// the thumbnail and the cover.
func (h *DownloadHandler) Image(c *gin.Context) {
	sessionID := c.Param("session_id")
	kind := c.Query("type")

	if kind != imageKindThumbnail && kind != imageKindCover {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid image type. Use 'thumbnail' or 'cover'",
		})
		return
	}

	path := workspace.GeneratedImagePathFor(h.workDir, sessionID, kind)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Image not found or expired",
		})
		return
	}

	c.FileAttachment(path, fmt.Sprintf("%s_%s.png", kind, sessionID))
}
