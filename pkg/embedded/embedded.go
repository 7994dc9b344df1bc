package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/mood_analysis_prompt.txt
var MoodAnalysisPromptTxt []byte

//go:embed data/prompts/song_recommendation_prompt.txt
var SongRecommendationPromptTxt []byte

//go:embed data/prompts/thumbnail_prompt.txt
var ThumbnailPromptTxt []byte

//go:embed data/prompts/cover_prompt.txt
var CoverPromptTxt []byte
