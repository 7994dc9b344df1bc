// Package prompt builds the model prompts from embedded templates.
package prompt

import "strings"

const moodPlaceholder = "{{MOOD_JSON}}"

type Builder struct {
	loader *Loader
}

func NewBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// MoodAnalysis returns the vision prompt for mood inference.
func (b *Builder) MoodAnalysis() string {
	return b.loader.GetMoodAnalysisPrompt()
}

// SongRecommendation injects the parsed mood JSON into the recommendation
// template.
func (b *Builder) SongRecommendation(moodJSON string) string {
	return strings.ReplaceAll(b.loader.GetSongRecommendationPrompt(), moodPlaceholder, moodJSON)
}

// Thumbnail returns the generation prompt for the wide playlist thumbnail.
func (b *Builder) Thumbnail() string {
	return b.loader.GetThumbnailPrompt()
}

// Cover returns the generation prompt for the LP-style cover.
func (b *Builder) Cover() string {
	return b.loader.GetCoverPrompt()
}
