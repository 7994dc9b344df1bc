package curation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pictune/pictune-api/internal/logger"
)

// maxDoubleQuotes guards the single-quote swap strategy: text already carrying
// this many double quotes is assumed to be valid JSON with an apostrophe in
// prose, and swapping would corrupt it.
const maxDoubleQuotes = 10

var (
	controlCharsRe  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	brokenQuoteRe   = regexp.MustCompile(`:\s*"([^"]*?)'([^"]*?)"`)

	emotionsRe      = regexp.MustCompile(`"emotions"\s*:\s*\[([^\]]*)\]`)
	quotedItemRe    = regexp.MustCompile(`"([^"]+)"`)
	playlistTitleRe = regexp.MustCompile(`"playlist_title"\s*:\s*"([^"]*)"`)
	reasonRe        = regexp.MustCompile(`"reason"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	songsBlockRe    = regexp.MustCompile(`(?s)"songs"\s*:\s*\[(.*?)\]`)
	songWithReason  = regexp.MustCompile(`\{\s*"title"\s*:\s*"([^"]*)"\s*,\s*"artist"\s*:\s*"([^"]*)"\s*,\s*"reason"\s*:\s*"([^"]*)"\s*\}`)
	songBare        = regexp.MustCompile(`\{\s*"title"\s*:\s*"([^"]*)"\s*,\s*"artist"\s*:\s*"([^"]*)"\s*\}`)
)

// repairStrategy is one transform in the extraction cascade. Strategies are
// applied cumulatively, ordered from least to most destructive, and the result
// is re-parsed strictly after each one.
type repairStrategy struct {
	name  string
	apply func(string) string
}

var repairCascade = []repairStrategy{
	{"raw", func(s string) string { return s }},
	{"strip-control-chars", func(s string) string {
		return whitespaceRunRe.ReplaceAllString(controlCharsRe.ReplaceAllString(s, " "), " ")
	}},
	{"trailing-commas", func(s string) string {
		return trailingCommaRe.ReplaceAllString(s, "$1")
	}},
	{"broken-apostrophe", func(s string) string {
		return brokenQuoteRe.ReplaceAllString(s, `: "$1$2"`)
	}},
	{"quote-swap", func(s string) string {
		if strings.Contains(s, "'") && strings.Count(s, `"`) < maxDoubleQuotes {
			return strings.ReplaceAll(s, "'", `"`)
		}
		return s
	}},
}

// Extract recovers a JSON object from free-form model output. The text may be
// wrapped in markdown fencing and may contain control characters, trailing
// commas, or mixed quote styles. A success from any cascade stage is
// semantically equivalent to a strict parse; when every stage fails, targeted
// field extraction assembles whatever the field regexes can recover, which
// counts as success only if at least one song record is found.
func Extract(raw, sessionID string) (map[string]any, error) {
	cleaned := stripFences(strings.TrimSpace(raw))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, ErrNoObjectFound
	}
	jsonStr := cleaned[start : end+1]

	var lastErr error
	current := jsonStr
	for i, strategy := range repairCascade {
		current = strategy.apply(current)

		var doc map[string]any
		if err := json.Unmarshal([]byte(current), &doc); err != nil {
			lastErr = err
			continue
		}
		logger.Debug("JSON parsed successfully", logger.Fields{
			"session_id": sessionID,
			"attempt":    i + 1,
			"strategy":   strategy.name,
		})
		return doc, nil
	}

	// Targeted field extraction over the original (unrepaired) substring.
	logger.Warn("Repair cascade exhausted, attempting field extraction", logger.Fields{
		"session_id": sessionID,
	})
	if doc, ok := extractFields(jsonStr); ok {
		logger.Info("Field extraction succeeded", logger.Fields{
			"session_id": sessionID,
			"songs":      len(doc["songs"].([]any)),
		})
		return doc, nil
	}

	return nil, &ExtractionError{Last: lastErr}
}

// stripFences removes a leading markdown code fence (with optional language
// tag) and a trailing closing fence.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractFields searches for each expected field independently and assembles
// whatever subset is found. Succeeds only when the song list yields at least
// one entry.
func extractFields(jsonStr string) (map[string]any, bool) {
	var emotions []any
	if m := emotionsRe.FindStringSubmatch(jsonStr); m != nil {
		for _, item := range quotedItemRe.FindAllStringSubmatch(m[1], -1) {
			emotions = append(emotions, item[1])
		}
	}

	playlistTitle := ""
	if m := playlistTitleRe.FindStringSubmatch(jsonStr); m != nil {
		playlistTitle = m[1]
	}

	reason := ""
	if m := reasonRe.FindStringSubmatch(jsonStr); m != nil {
		reason = m[1]
	}

	var songs []any
	if m := songsBlockRe.FindStringSubmatch(jsonStr); m != nil {
		songsStr := m[1]
		matches := songWithReason.FindAllStringSubmatch(songsStr, -1)
		if len(matches) > 0 {
			for _, sm := range matches {
				songs = append(songs, map[string]any{"title": sm[1], "artist": sm[2], "reason": sm[3]})
			}
		} else {
			for _, sm := range songBare.FindAllStringSubmatch(songsStr, -1) {
				songs = append(songs, map[string]any{"title": sm[1], "artist": sm[2], "reason": ""})
			}
		}
	}

	if len(songs) == 0 {
		return nil, false
	}

	return map[string]any{
		"emotions":       emotions,
		"playlist_title": playlistTitle,
		"reason":         reason,
		"songs":          songs,
	}, true
}
