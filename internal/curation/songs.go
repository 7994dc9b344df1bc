package curation

import "fmt"

const (
	// defaultPlaylistTitle is used when the model omits a title.
	defaultPlaylistTitle = "AI Curated Playlist"
	// MaxSongs caps a batch at the advertised playlist length. Cleanup on
	// fatal paths sweeps this many audio slots.
	MaxSongs = 3
)

// SongRecommendation is one recommended track. Title is always non-empty;
// artist may be empty, in which case acquisition still attempts a search.
type SongRecommendation struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Reason string `json:"reason"`
}

// RecommendationSet is the parsed output of the song-recommendation call.
type RecommendationSet struct {
	PlaylistTitle string
	Reason        string
	Songs         []SongRecommendation
}

// ParseRecommendations builds a RecommendationSet from an extracted document.
// Entries without a title are dropped; the batch is capped at three songs.
func ParseRecommendations(doc map[string]any) (*RecommendationSet, error) {
	set := &RecommendationSet{
		PlaylistTitle: defaultPlaylistTitle,
	}

	if title, ok := doc["playlist_title"].(string); ok && title != "" {
		set.PlaylistTitle = title
	}
	if reason, ok := doc["reason"].(string); ok {
		set.Reason = reason
	}

	rawSongs, ok := doc["songs"].([]any)
	if !ok {
		return nil, fmt.Errorf("songs list missing from recommendation response")
	}

	for _, raw := range rawSongs {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		song := SongRecommendation{}
		if title, ok := entry["title"].(string); ok {
			song.Title = title
		}
		if artist, ok := entry["artist"].(string); ok {
			song.Artist = artist
		}
		if reason, ok := entry["reason"].(string); ok {
			song.Reason = reason
		}
		if song.Title == "" {
			continue
		}
		set.Songs = append(set.Songs, song)
		if len(set.Songs) == MaxSongs {
			break
		}
	}

	if len(set.Songs) == 0 {
		return nil, fmt.Errorf("no usable songs in recommendation response")
	}

	return set, nil
}
