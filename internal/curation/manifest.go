package curation

// SongTally splits the recommendation set by acquisition outcome. Order inside
// each slice follows the recommendation order.
type SongTally struct {
	Requested  []SongRecommendation `json:"requested"`
	Downloaded []SongRecommendation `json:"downloaded"`
	Failed     []SongRecommendation `json:"failed"`
}

// Manifest is the full record of one curation run, returned to the caller as
// the API response body. A successful manifest always points at a playable
// merged file; the tally tells the client which songs made it in.
type Manifest struct {
	Success       bool                `json:"success"`
	SessionID     string              `json:"session_id"`
	PlaylistTitle string              `json:"playlist_title"`
	Mood          map[string]MoodAxis `json:"mood"`
	Analysis      string              `json:"analysis"`
	Reason        string              `json:"reason"`
	Songs         SongTally           `json:"songs"`
	DownloadURL   string              `json:"download_url"`
	Images        map[string]string   `json:"images"`
}

// SongCount is the number of audio slots the run allocated, used by cleanup.
func (m *Manifest) SongCount() int {
	return len(m.Songs.Requested)
}
