package prompt

import (
	"strings"

	"github.com/pictune/pictune-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetMoodAnalysisPrompt loads the mood analysis prompt
func (l *Loader) GetMoodAnalysisPrompt() string {
	return strings.TrimSpace(string(embedded.MoodAnalysisPromptTxt))
}

// GetSongRecommendationPrompt loads the song recommendation prompt template
func (l *Loader) GetSongRecommendationPrompt() string {
	return strings.TrimSpace(string(embedded.SongRecommendationPromptTxt))
}

// GetThumbnailPrompt loads the playlist thumbnail generation prompt
func (l *Loader) GetThumbnailPrompt() string {
	return strings.TrimSpace(string(embedded.ThumbnailPromptTxt))
}

// GetCoverPrompt loads the LP cover generation prompt
func (l *Loader) GetCoverPrompt() string {
	return strings.TrimSpace(string(embedded.CoverPromptTxt))
}
