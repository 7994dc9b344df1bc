package curation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pictune/pictune-api/internal/logger"
	"github.com/pictune/pictune-api/internal/session"
	"github.com/pictune/pictune-api/internal/workspace"
)

// ModelClient produces raw model output for the two inference stages.
type ModelClient interface {
	AnalyzeMood(ctx context.Context, imagePath string) (string, error)
	RecommendSongs(ctx context.Context, moodJSON string) (string, error)
}

// ImageMaker renders the playlist thumbnail and cover. Both return values are
// file paths; an empty string means that image failed and is simply omitted.
type ImageMaker interface {
	GenerateImages(ctx context.Context, imagePath, thumbnailDest, coverDest string) (string, string)
}

// SongDownloader acquires one song as an MP3 at destBase + ".mp3".
type SongDownloader interface {
	Acquire(ctx context.Context, title, artist, destBase, cookieFile string) (string, error)
}

// AudioMerger concatenates the inputs into a single output file.
type AudioMerger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

// SessionGate resolves the cookie artifact to hand to the downloader.
type SessionGate interface {
	Resolve(ctx context.Context) *session.Artifact
}

// Curator runs the full image-to-playlist pipeline for one session.
type Curator struct {
	models     ModelClient
	images     ImageMaker
	downloader SongDownloader
	merger     AudioMerger
	gate       SessionGate
}

func New(models ModelClient, images ImageMaker, downloader SongDownloader, merger AudioMerger, gate SessionGate) *Curator {
	return &Curator{
		models:     models,
		images:     images,
		downloader: downloader,
		merger:     merger,
		gate:       gate,
	}
}

type imagePair struct {
	thumbnail string
	cover     string
}

// Curate executes the pipeline: mood analysis, song recommendation, per-song
// audio acquisition, and the final merge. Image generation runs alongside the
// recommendation and download stages and never gates the audio path. The
// returned manifest records exactly which songs made it into the merged file.
func (c *Curator) Curate(ctx context.Context, ws *workspace.Workspace) (*Manifest, error) {
	sessionID := ws.SessionID()
	started := time.Now()

	logger.Info("🎬 Starting curation pipeline", logger.Fields{
		"session_id": sessionID,
	})

	// Stage 1: mood analysis
	rawMood, err := c.models.AnalyzeMood(ctx, ws.ImagePath())
	if err != nil {
		return nil, &RecommendationError{Stage: "mood", Err: err}
	}

	moodDoc, err := Extract(rawMood, sessionID)
	if err != nil {
		return nil, stampStage(err, "mood")
	}

	profile, err := ParseMoodProfile(moodDoc)
	if err != nil {
		return nil, stampStage(err, "mood")
	}

	logger.Info("📊 Mood analysis complete", logger.Fields{
		"session_id": sessionID,
		"analysis":   profile.Analysis,
	})

	// Image generation runs in the background and joins before the manifest
	// is built. Failures there degrade the response, never fail it.
	imageCh := make(chan imagePair, 1)
	go func() {
		if c.images == nil {
			imageCh <- imagePair{}
			return
		}
		thumb, cover := c.images.GenerateImages(ctx, ws.ImagePath(), ws.ImageDest("thumbnail"), ws.ImageDest("cover"))
		imageCh <- imagePair{thumbnail: thumb, cover: cover}
	}()

	// Stage 2: song recommendation
	rawSongs, err := c.models.RecommendSongs(ctx, profile.JSON())
	if err != nil {
		return nil, &RecommendationError{Stage: "songs", Err: err}
	}

	songDoc, err := Extract(rawSongs, sessionID)
	if err != nil {
		return nil, stampStage(err, "songs")
	}

	recs, err := ParseRecommendations(songDoc)
	if err != nil {
		return nil, stampStage(err, "songs")
	}

	logger.Info("🎵 Song recommendations ready", logger.Fields{
		"session_id":     sessionID,
		"playlist_title": recs.PlaylistTitle,
		"song_count":     len(recs.Songs),
	})

	// Stage 3: per-song acquisition. The cookie artifact is resolved once and
	// shared by every slot; slots run concurrently and land by index so the
	// merge preserves recommendation order.
	cookieFile := ""
	if artifact := c.gate.Resolve(ctx); artifact != nil {
		cookieFile = artifact.Path
	}

	acquired := make([]string, len(recs.Songs))
	var wg sync.WaitGroup
	for i, song := range recs.Songs {
		wg.Add(1)
		go func(idx int, s SongRecommendation) {
			defer wg.Done()
			path, err := c.downloader.Acquire(ctx, s.Title, s.Artist, ws.AudioBasePath(idx), cookieFile)
			if err != nil {
				logger.Warn("Song acquisition failed", logger.Fields{
					"session_id": sessionID,
					"title":      s.Title,
					"artist":     s.Artist,
					"error":      err.Error(),
				})
				return
			}
			acquired[idx] = path
		}(i, song)
	}
	wg.Wait()

	tally := SongTally{
		Requested:  recs.Songs,
		Downloaded: []SongRecommendation{},
		Failed:     []SongRecommendation{},
	}
	inputs := make([]string, 0, len(recs.Songs))
	for i, song := range recs.Songs {
		if acquired[i] != "" {
			inputs = append(inputs, acquired[i])
			tally.Downloaded = append(tally.Downloaded, song)
		} else {
			tally.Failed = append(tally.Failed, song)
		}
	}

	if len(inputs) == 0 {
		return nil, ErrBatchExhausted
	}

	logger.Info("⬇️  Audio acquisition complete", logger.Fields{
		"session_id": sessionID,
		"downloaded": len(tally.Downloaded),
		"failed":     len(tally.Failed),
	})

	// Stage 4: merge in recommendation order
	if err := c.merger.Merge(ctx, inputs, ws.MergedPath()); err != nil {
		return nil, &MergeError{Err: err}
	}

	images := <-imageCh
	imageLinks := map[string]string{}
	if images.thumbnail != "" {
		imageLinks["thumbnail"] = fmt.Sprintf("/download/image/%s?type=thumbnail", sessionID)
	}
	if images.cover != "" {
		imageLinks["cover"] = fmt.Sprintf("/download/image/%s?type=cover", sessionID)
	}

	logger.Info("✅ Curation pipeline complete", logger.Fields{
		"session_id":  sessionID,
		"duration_ms": time.Since(started).Milliseconds(),
		"downloaded":  len(tally.Downloaded),
		"failed":      len(tally.Failed),
	})

	return &Manifest{
		Success:       true,
		SessionID:     sessionID,
		PlaylistTitle: recs.PlaylistTitle,
		Mood:          profile.Axes,
		Analysis:      profile.Analysis,
		Reason:        recs.Reason,
		Songs:         tally,
		DownloadURL:   "/download/" + sessionID,
		Images:        imageLinks,
	}, nil
}

// stampStage attaches the pipeline stage to extraction failures so callers can
// tell a mood parse failure from a recommendation parse failure.
func stampStage(err error, stage string) error {
	var exErr *ExtractionError
	if errors.As(err, &exErr) {
		exErr.Stage = stage
		return exErr
	}
	return &RecommendationError{Stage: stage, Err: err}
}
