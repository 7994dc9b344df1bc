package curation

import (
	"errors"
	"fmt"
)

// ErrNoObjectFound is returned when the model output contains no JSON object
// delimiters at all.
var ErrNoObjectFound = errors.New("no JSON object found in model output")

// ErrBatchExhausted is returned when every recommended song failed acquisition.
var ErrBatchExhausted = errors.New("failed to download any audio files")

// ExtractionError reports that the full repair cascade and the regex fallback
// both failed. It preserves the last structured-parse error.
type ExtractionError struct {
	Stage string // "mood" or "songs"
	Last  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s response after all attempts: %v", e.Stage, e.Last)
}

func (e *ExtractionError) Unwrap() error { return e.Last }

// RecommendationError reports that an upstream model call failed entirely.
type RecommendationError struct {
	Stage string
	Err   error
}

func (e *RecommendationError) Error() string {
	return fmt.Sprintf("%s model call failed: %v", e.Stage, e.Err)
}

func (e *RecommendationError) Unwrap() error { return e.Err }

// MergeError reports a concatenation or encode failure. Fatal to the request.
type MergeError struct {
	Err error
}

func (e *MergeError) Error() string { return fmt.Sprintf("audio merge failed: %v", e.Err) }

func (e *MergeError) Unwrap() error { return e.Err }
