package curation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func songDoc(songs ...map[string]any) map[string]any {
	raw := make([]any, len(songs))
	for i, s := range songs {
		raw[i] = any(s)
	}
	return map[string]any{
		"playlist_title": "Evening Glow",
		"reason":         "matches the warm palette",
		"songs":          raw,
	}
}

func TestParseRecommendations(t *testing.T) {
	doc := songDoc(
		map[string]any{"title": "First", "artist": "A", "reason": "opener"},
		map[string]any{"title": "Second", "artist": "B", "reason": "bridge"},
		map[string]any{"title": "Third", "artist": "C", "reason": "closer"},
	)

	set, err := ParseRecommendations(doc)
	require.NoError(t, err)

	assert.Equal(t, "Evening Glow", set.PlaylistTitle)
	assert.Equal(t, "matches the warm palette", set.Reason)
	require.Len(t, set.Songs, 3)
	assert.Equal(t, SongRecommendation{Title: "Second", Artist: "B", Reason: "bridge"}, set.Songs[1])
}

func TestParseRecommendations_CapsBatch(t *testing.T) {
	doc := songDoc(
		map[string]any{"title": "One", "artist": "A"},
		map[string]any{"title": "Two", "artist": "B"},
		map[string]any{"title": "Three", "artist": "C"},
		map[string]any{"title": "Four", "artist": "D"},
	)

	set, err := ParseRecommendations(doc)
	require.NoError(t, err)
	require.Len(t, set.Songs, MaxSongs)
	assert.Equal(t, "Three", set.Songs[2].Title)
}

func TestParseRecommendations_DropsUntitledEntries(t *testing.T) {
	doc := songDoc(
		map[string]any{"title": "", "artist": "Ghost"},
		map[string]any{"title": "Kept", "artist": "X"},
	)
	// mixed garbage in the list is skipped, not fatal
	doc["songs"] = append(doc["songs"].([]any), "not an object")

	set, err := ParseRecommendations(doc)
	require.NoError(t, err)
	require.Len(t, set.Songs, 1)
	assert.Equal(t, "Kept", set.Songs[0].Title)
}

func TestParseRecommendations_DefaultTitle(t *testing.T) {
	doc := songDoc(map[string]any{"title": "Solo", "artist": "A"})
	delete(doc, "playlist_title")

	set, err := ParseRecommendations(doc)
	require.NoError(t, err)
	assert.Equal(t, "AI Curated Playlist", set.PlaylistTitle)
}

func TestParseRecommendations_Failures(t *testing.T) {
	t.Run("missing songs list", func(t *testing.T) {
		_, err := ParseRecommendations(map[string]any{"playlist_title": "Empty"})
		assert.Error(t, err)
	})

	t.Run("no usable songs", func(t *testing.T) {
		_, err := ParseRecommendations(songDoc(map[string]any{"title": "", "artist": "A"}))
		assert.Error(t, err)
	})
}
