package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pictune/pictune-api/internal/config"
	"github.com/pictune/pictune-api/internal/curation"
	"github.com/pictune/pictune-api/internal/logger"
	"github.com/pictune/pictune-api/internal/metrics"
	"github.com/pictune/pictune-api/internal/workspace"
)

// Curator runs the image-to-playlist pipeline for one session workspace.
type Curator interface {
	Curate(ctx context.Context, ws *workspace.Workspace) (*curation.Manifest, error)
}

type PlaylistHandler struct {
	cfg           *config.Config
	curator       Curator
	cloudwatch    *metrics.Client
	sentryMetrics *metrics.SentryMetrics
}

func NewPlaylistHandler(cfg *config.Config, curator Curator, cloudwatch *metrics.Client) *PlaylistHandler {
	return &PlaylistHandler{
		cfg:           cfg,
		curator:       curator,
		cloudwatch:    cloudwatch,
		sentryMetrics: metrics.NewSentryMetrics(),
	}
}

// Generate accepts a multipart image upload, runs the curation pipeline and
// returns the manifest. Fatal pipeline errors clean the session workspace
// before responding; on success only the merged file and generated images
// survive for the download endpoints.
func (h *PlaylistHandler) Generate(c *gin.Context) {
	sessionID := uuid.New().String()
	c.Set("session_id", sessionID)

	file, err := c.FormFile(imageFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Image file is required",
			"session_id": sessionID,
		})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":      "Image file too large",
			"session_id": sessionID,
		})
		return
	}

	ws, err := workspace.New(h.cfg.WorkDir, sessionID)
	if err != nil {
		logger.Error("Failed to create session workspace", err, logger.Fields{
			"session_id": sessionID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to prepare workspace",
			"session_id": sessionID,
		})
		return
	}

	if err := c.SaveUploadedFile(file, ws.ImagePath()); err != nil {
		logger.Error("Failed to save uploaded image", err, logger.Fields{
			"session_id": sessionID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to save uploaded image",
			"session_id": sessionID,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	started := time.Now()
	manifest, err := h.curator.Curate(ctx, ws)
	duration := time.Since(started)

	if err != nil {
		ws.CleanupAll(curation.MaxSongs)
		h.cloudwatch.RecordPipeline(duration, curation.MaxSongs, 0, curation.MaxSongs)
		h.sentryMetrics.RecordPipeline(c.Request.Context(), duration, curation.MaxSongs, 0, curation.MaxSongs)
		status, payload := mapPipelineError(err, sessionID)
		c.JSON(status, payload)
		return
	}

	ws.CleanupIntermediates(manifest.SongCount())

	h.cloudwatch.RecordPipeline(duration, manifest.SongCount(), len(manifest.Songs.Downloaded), len(manifest.Songs.Failed))
	h.sentryMetrics.RecordPipeline(c.Request.Context(), duration, manifest.SongCount(), len(manifest.Songs.Downloaded), len(manifest.Songs.Failed))

	c.JSON(http.StatusOK, manifest)
}

// mapPipelineError translates pipeline failures into a status code and a
// client-facing payload. Model transport failures surface as bad gateway;
// everything else is an internal error.
func mapPipelineError(err error, sessionID string) (int, gin.H) {
	var exErr *curation.ExtractionError
	if errors.As(err, &exErr) {
		return http.StatusInternalServerError, gin.H{
			"error":      "Failed to parse model response",
			"stage":      exErr.Stage,
			"session_id": sessionID,
		}
	}

	var recErr *curation.RecommendationError
	if errors.As(err, &recErr) {
		return http.StatusBadGateway, gin.H{
			"error":      "Model request failed",
			"stage":      recErr.Stage,
			"session_id": sessionID,
		}
	}

	if errors.Is(err, curation.ErrBatchExhausted) {
		return http.StatusInternalServerError, gin.H{
			"error":      "Failed to download any audio files",
			"session_id": sessionID,
		}
	}

	var mergeErr *curation.MergeError
	if errors.As(err, &mergeErr) {
		return http.StatusInternalServerError, gin.H{
			"error":      "Failed to merge audio files",
			"session_id": sessionID,
		}
	}

	return http.StatusInternalServerError, gin.H{
		"error":      "Unexpected error",
		"session_id": sessionID,
	}
}
