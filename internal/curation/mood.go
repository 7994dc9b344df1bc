package curation

import (
	"encoding/json"
	"fmt"
)

// defaultIntensity is imputed when the model omits an axis intensity.
const defaultIntensity = 50

// MoodAxis holds the chosen pole and its strength for one mood dimension.
type MoodAxis struct {
	Selected  string `json:"selected"`
	Intensity int    `json:"intensity"`
}

// AxisSpec names one mood dimension and its two mutually exclusive poles.
type AxisSpec struct {
	Name    string
	PoleA   string
	PoleB   string
}

// MoodAxes defines the six dimensions of a mood profile, in canonical order.
var MoodAxes = []AxisSpec{
	{"energy", "vibrant", "calm"},
	{"tempo", "upbeat", "downbeat"},
	{"temperature", "warm", "cold"},
	{"brightness", "bright", "dark"},
	{"atmosphere", "dreamy", "sharp"},
	{"density", "minimal", "lush"},
}

// MoodProfile is the six-axis emotional fingerprint derived from an image,
// plus a one-line free-text analysis. Read-only after parsing.
type MoodProfile struct {
	Axes     map[string]MoodAxis `json:"mood"`
	Analysis string              `json:"analysis"`
}

// ParseMoodProfile builds a MoodProfile from an extracted mood document.
// Every axis is present in the result: a missing axis falls back to its first
// pole, and a missing intensity is imputed.
func ParseMoodProfile(doc map[string]any) (*MoodProfile, error) {
	moodBlock, ok := doc["mood"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mood block missing from analysis response")
	}

	profile := &MoodProfile{
		Axes: make(map[string]MoodAxis, len(MoodAxes)),
	}
	if analysis, ok := doc["analysis"].(string); ok {
		profile.Analysis = analysis
	}

	for _, spec := range MoodAxes {
		axis := MoodAxis{Selected: spec.PoleA, Intensity: defaultIntensity}

		if entry, ok := moodBlock[spec.Name].(map[string]any); ok {
			if selected, ok := entry["selected"].(string); ok && selected != "" {
				axis.Selected = selected
			}
			switch v := entry["intensity"].(type) {
			case float64:
				axis.Intensity = clampIntensity(int(v))
			case string:
				// Some model outputs quote the number
				var parsed float64
				if _, err := fmt.Sscanf(v, "%f", &parsed); err == nil {
					axis.Intensity = clampIntensity(int(parsed))
				}
			}
		}

		profile.Axes[spec.Name] = axis
	}

	return profile, nil
}

// JSON renders the profile in the same shape the analysis model produced, for
// injection into the recommendation prompt.
func (p *MoodProfile) JSON() string {
	data, err := json.Marshal(map[string]any{
		"mood":     p.Axes,
		"analysis": p.Analysis,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
