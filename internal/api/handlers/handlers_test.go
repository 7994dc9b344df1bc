package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pictune/pictune-api/internal/config"
	"github.com/pictune/pictune-api/internal/curation"
	"github.com/pictune/pictune-api/internal/metrics"
	"github.com/pictune/pictune-api/internal/session"
	"github.com/pictune/pictune-api/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.WorkDir = t.TempDir()
	return cfg
}

func disabledMetrics(t *testing.T) *metrics.Client {
	t.Helper()
	client, err := metrics.NewClient(context.Background(), "test")
	require.NoError(t, err)
	return client
}

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRoot(t *testing.T) {
	router := gin.New()
	router.GET("/", Root)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "music curation")
}

func TestGetMetrics(t *testing.T) {
	router := gin.New()
	router.GET("/api/metrics", NewMetricsHandler("1.2.3").GetMetrics)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.System.GoVersion)
}

type stubCurator struct {
	manifest *curation.Manifest
	err      error
	gotWS    *workspace.Workspace
}

func (s *stubCurator) Curate(_ context.Context, ws *workspace.Workspace) (*curation.Manifest, error) {
	s.gotWS = ws
	if s.err != nil {
		return nil, s.err
	}
	m := *s.manifest
	m.SessionID = ws.SessionID()
	return &m, nil
}

func multipartImage(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newGenerateRouter(cfg *config.Config, curator Curator, cw *metrics.Client) *gin.Engine {
	router := gin.New()
	router.POST("/generate-playlist", NewPlaylistHandler(cfg, curator, cw).Generate)
	return router
}

func TestGenerate_Success(t *testing.T) {
	cfg := testConfig(t)
	stub := &stubCurator{manifest: &curation.Manifest{
		Success:       true,
		PlaylistTitle: "Golden Hour",
		Songs: curation.SongTally{
			Requested:  []curation.SongRecommendation{{Title: "A"}, {Title: "B"}},
			Downloaded: []curation.SongRecommendation{{Title: "A"}, {Title: "B"}},
			Failed:     []curation.SongRecommendation{},
		},
	}}
	router := newGenerateRouter(cfg, stub, disabledMetrics(t))

	body, contentType := multipartImage(t, imageFormField)
	req := httptest.NewRequest(http.MethodPost, "/generate-playlist", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var manifest curation.Manifest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &manifest))
	assert.True(t, manifest.Success)
	assert.Equal(t, "Golden Hour", manifest.PlaylistTitle)
	assert.NotEmpty(t, manifest.SessionID)

	// Upload was staged into the session workspace before curation
	require.NotNil(t, stub.gotWS)
	// Intermediates are swept after a successful run
	_, err := os.Stat(stub.gotWS.ImagePath())
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_MissingFile(t *testing.T) {
	router := newGenerateRouter(testConfig(t), &stubCurator{}, disabledMetrics(t))

	req := httptest.NewRequest(http.MethodPost, "/generate-playlist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_PipelineFailureCleansWorkspace(t *testing.T) {
	cfg := testConfig(t)
	stub := &stubCurator{err: curation.ErrBatchExhausted}
	router := newGenerateRouter(cfg, stub, disabledMetrics(t))

	body, contentType := multipartImage(t, imageFormField)
	req := httptest.NewRequest(http.MethodPost, "/generate-playlist", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to download any audio files")

	require.NotNil(t, stub.gotWS)
	_, err := os.Stat(stub.gotWS.ImagePath())
	assert.True(t, os.IsNotExist(err))
}

func TestMapPipelineError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "extraction failure",
			err:        &curation.ExtractionError{Stage: "mood", Last: errors.New("bad json")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to parse model response",
		},
		{
			name:       "model transport failure",
			err:        &curation.RecommendationError{Stage: "songs", Err: errors.New("upstream 500")},
			wantStatus: http.StatusBadGateway,
			wantError:  "Model request failed",
		},
		{
			name:       "batch exhausted",
			err:        curation.ErrBatchExhausted,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to download any audio files",
		},
		{
			name:       "merge failure",
			err:        &curation.MergeError{Err: errors.New("ffmpeg died")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to merge audio files",
		},
		{
			name:       "unknown",
			err:        errors.New("surprise"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Unexpected error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapPipelineError(tt.err, "sess")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, payload["error"])
			assert.Equal(t, "sess", payload["session_id"])
		})
	}
}

func newDownloadRouter(workDir string) *gin.Engine {
	router := gin.New()
	h := NewDownloadHandler(workDir)
	router.GET("/download/:session_id", h.Playlist)
	router.GET("/download/image/:session_id", h.Image)
	return router
}

func TestDownloadPlaylist(t *testing.T) {
	workDir := t.TempDir()
	router := newDownloadRouter(workDir)

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("existing file streams", func(t *testing.T) {
		path := workspace.MergedPathFor(workDir, "sess-1")
		require.NoError(t, os.WriteFile(path, []byte("mp3 bytes"), 0o644))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/sess-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "mp3 bytes", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "playlist_sess-1.mp3")
	})
}

func TestDownloadImage(t *testing.T) {
	workDir := t.TempDir()
	router := newDownloadRouter(workDir)

	t.Run("invalid type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/image/sess-1?type=banner", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing image", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/image/sess-1?type=cover", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("existing image streams", func(t *testing.T) {
		path := workspace.GeneratedImagePathFor(workDir, "sess-1", imageKindThumbnail)
		require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0o644))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/image/sess-1?type=thumbnail", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png bytes", w.Body.String())
	})
}

type stubRefresher struct {
	status session.RefreshStatus
}

func (s *stubRefresher) ForceRefresh(_ context.Context) session.RefreshStatus {
	return s.status
}

func TestRefreshCookies(t *testing.T) {
	tests := []struct {
		status     session.RefreshStatus
		wantCode   int
		wantStatus string
	}{
		{session.RefreshSuccess, http.StatusOK, "success"},
		{session.RefreshPartial, http.StatusOK, "partial"},
		{session.RefreshFailed, http.StatusInternalServerError, "failed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			router := gin.New()
			router.POST("/refresh-cookies", NewSessionHandler(&stubRefresher{status: tt.status}).RefreshCookies)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/refresh-cookies", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantStatus)
		})
	}
}
