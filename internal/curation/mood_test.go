package curation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoodProfile_FullDocument(t *testing.T) {
	doc := map[string]any{
		"mood": map[string]any{
			"energy":      map[string]any{"selected": "vibrant", "intensity": float64(80)},
			"tempo":       map[string]any{"selected": "upbeat", "intensity": float64(65)},
			"temperature": map[string]any{"selected": "warm", "intensity": float64(90)},
			"brightness":  map[string]any{"selected": "bright", "intensity": float64(70)},
			"atmosphere":  map[string]any{"selected": "dreamy", "intensity": float64(55)},
			"density":     map[string]any{"selected": "lush", "intensity": float64(45)},
		},
		"analysis": "warm evening light over a quiet street",
	}

	profile, err := ParseMoodProfile(doc)
	require.NoError(t, err)

	assert.Equal(t, "warm evening light over a quiet street", profile.Analysis)
	assert.Len(t, profile.Axes, 6)
	assert.Equal(t, MoodAxis{Selected: "vibrant", Intensity: 80}, profile.Axes["energy"])
	assert.Equal(t, MoodAxis{Selected: "lush", Intensity: 45}, profile.Axes["density"])
}

func TestParseMoodProfile_ImputesMissingAxes(t *testing.T) {
	doc := map[string]any{
		"mood": map[string]any{
			"energy": map[string]any{"selected": "calm", "intensity": float64(30)},
		},
	}

	profile, err := ParseMoodProfile(doc)
	require.NoError(t, err)

	// Present axis kept as-is
	assert.Equal(t, MoodAxis{Selected: "calm", Intensity: 30}, profile.Axes["energy"])

	// Missing axes fall back to their first pole at default intensity
	assert.Equal(t, MoodAxis{Selected: "upbeat", Intensity: 50}, profile.Axes["tempo"])
	assert.Equal(t, MoodAxis{Selected: "warm", Intensity: 50}, profile.Axes["temperature"])
	assert.Len(t, profile.Axes, 6)
}

func TestParseMoodProfile_IntensityHandling(t *testing.T) {
	tests := []struct {
		name      string
		intensity any
		want      int
	}{
		{"quoted number", "75", 75},
		{"above range", float64(140), 100},
		{"below range", float64(-20), 0},
		{"unparseable string", "very", 50},
		{"missing", nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := map[string]any{"selected": "bright"}
			if tt.intensity != nil {
				entry["intensity"] = tt.intensity
			}
			doc := map[string]any{
				"mood": map[string]any{"brightness": entry},
			}

			profile, err := ParseMoodProfile(doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, profile.Axes["brightness"].Intensity)
		})
	}
}

func TestParseMoodProfile_MissingMoodBlock(t *testing.T) {
	_, err := ParseMoodProfile(map[string]any{"analysis": "no mood here"})
	assert.Error(t, err)
}

func TestMoodProfileJSON(t *testing.T) {
	doc := map[string]any{
		"mood": map[string]any{
			"energy": map[string]any{"selected": "vibrant", "intensity": float64(80)},
		},
		"analysis": "bold colors",
	}

	profile, err := ParseMoodProfile(doc)
	require.NoError(t, err)

	var decoded struct {
		Mood     map[string]MoodAxis `json:"mood"`
		Analysis string              `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal([]byte(profile.JSON()), &decoded))

	assert.Equal(t, "bold colors", decoded.Analysis)
	assert.Equal(t, MoodAxis{Selected: "vibrant", Intensity: 80}, decoded.Mood["energy"])
	assert.Len(t, decoded.Mood, 6)
}
