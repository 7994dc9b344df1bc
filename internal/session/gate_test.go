package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plausibleCookies is comfortably above the minimum artifact size.
var plausibleCookies = netscapeHeader + "\n" + strings.Repeat("# padding line\n", 20)

func writeCookieFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type recordingRefresher struct {
	calls   int
	onCall  func()
	willErr error
}

func (r *recordingRefresher) Refresh(_ context.Context) error {
	r.calls++
	if r.onCall != nil {
		r.onCall()
	}
	return r.willErr
}

func TestResolve_MountedAlwaysWins(t *testing.T) {
	dir := t.TempDir()
	refresher := &recordingRefresher{}
	gate := NewGate(dir, refresher)

	writeCookieFile(t, gate.mountedPath, plausibleCookies)
	writeCookieFile(t, gate.capturedPath, plausibleCookies)

	// Mounted file is ancient; age must not matter
	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(gate.mountedPath, old, old))

	art := gate.Resolve(context.Background())
	require.NotNil(t, art)
	assert.Equal(t, OriginMounted, art.Origin)
	assert.Equal(t, gate.mountedPath, art.Path)
	assert.Zero(t, refresher.calls)
}

func TestResolve_TinyMountedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	gate := NewGate(dir, nil)

	writeCookieFile(t, gate.mountedPath, "# stub")
	writeCookieFile(t, gate.capturedPath, plausibleCookies)

	art := gate.Resolve(context.Background())
	require.NotNil(t, art)
	assert.Equal(t, OriginCaptured, art.Origin)
}

func TestResolve_CapturedFreshness(t *testing.T) {
	tests := []struct {
		name        string
		age         time.Duration
		wantRefresh bool
	}{
		{"five hours old is fresh", 5 * time.Hour, false},
		{"seven hours old is stale", 7 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			refresher := &recordingRefresher{}
			gate := NewGate(dir, refresher)

			writeCookieFile(t, gate.capturedPath, plausibleCookies)
			gate.now = func() time.Time { return time.Now().Add(tt.age) }

			art := gate.Resolve(context.Background())
			require.NotNil(t, art)
			assert.Equal(t, OriginCaptured, art.Origin)

			if tt.wantRefresh {
				assert.Equal(t, 1, refresher.calls)
			} else {
				assert.Zero(t, refresher.calls)
			}
		})
	}
}

func TestResolve_NothingAvailableTriggersRegeneration(t *testing.T) {
	dir := t.TempDir()
	var gate *Gate
	refresher := &recordingRefresher{}
	gate = NewGate(dir, refresher)
	refresher.onCall = func() {
		writeCookieFile(t, gate.capturedPath, plausibleCookies)
	}

	art := gate.Resolve(context.Background())
	assert.Equal(t, 1, refresher.calls)
	require.NotNil(t, art)
	assert.Equal(t, OriginCaptured, art.Origin)
}

func TestResolve_RegenerationFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	refresher := &recordingRefresher{willErr: errors.New("login blocked")}
	gate := NewGate(dir, refresher)

	art := gate.Resolve(context.Background())
	assert.Nil(t, art)
	assert.Equal(t, 1, refresher.calls)
}

func TestResolve_NoRefresherConfigured(t *testing.T) {
	gate := NewGate(t.TempDir(), nil)
	assert.Nil(t, gate.Resolve(context.Background()))
}

func TestForceRefresh(t *testing.T) {
	t.Run("success with verified file", func(t *testing.T) {
		dir := t.TempDir()
		var gate *Gate
		refresher := &recordingRefresher{}
		gate = NewGate(dir, refresher)
		refresher.onCall = func() {
			writeCookieFile(t, gate.capturedPath, plausibleCookies)
		}

		assert.Equal(t, RefreshSuccess, gate.ForceRefresh(context.Background()))
	})

	t.Run("partial when file lacks the expected header", func(t *testing.T) {
		dir := t.TempDir()
		var gate *Gate
		refresher := &recordingRefresher{}
		gate = NewGate(dir, refresher)
		refresher.onCall = func() {
			writeCookieFile(t, gate.capturedPath, strings.Repeat("not a cookie export\n", 10))
		}

		assert.Equal(t, RefreshPartial, gate.ForceRefresh(context.Background()))
	})

	t.Run("partial when helper errors but file exists", func(t *testing.T) {
		dir := t.TempDir()
		refresher := &recordingRefresher{willErr: errors.New("login unverified")}
		gate := NewGate(dir, refresher)
		writeCookieFile(t, gate.capturedPath, plausibleCookies)

		assert.Equal(t, RefreshPartial, gate.ForceRefresh(context.Background()))
	})

	t.Run("failed when nothing was produced", func(t *testing.T) {
		dir := t.TempDir()
		refresher := &recordingRefresher{willErr: errors.New("browser crashed")}
		gate := NewGate(dir, refresher)

		assert.Equal(t, RefreshFailed, gate.ForceRefresh(context.Background()))
	})
}

func TestStatArtifact(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		assert.Nil(t, statArtifact(filepath.Join(dir, "absent.txt"), OriginMounted))
	})

	t.Run("plausible file", func(t *testing.T) {
		path := filepath.Join(dir, "cookies.txt")
		writeCookieFile(t, path, plausibleCookies)

		art := statArtifact(path, OriginCaptured)
		require.NotNil(t, art)
		assert.Greater(t, art.Size, int64(minArtifactSize))
		assert.WithinDuration(t, time.Now(), art.CapturedAt, time.Minute)
	})
}
