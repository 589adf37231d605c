// Package classify turns report inputs (text, image URL, audio) into
// per-modality predictions. Model inference runs in a separate service;
// when that service is down the text path degrades to keyword heuristics
// instead of failing the request.
package classify

import "context"

// Score is one candidate label with the backend's probability for it.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ModelBackend abstracts the model inference service. Implementations must
// be safe for concurrent use.
type ModelBackend interface {
	// Available reports whether the backend answered its last health probe.
	Available() bool

	// ClassifyText runs zero-shot classification of text against the labels.
	ClassifyText(ctx context.Context, text string, labels []string) ([]Score, error)

	// ClassifyImage scores raw image bytes against the labels.
	ClassifyImage(ctx context.Context, image []byte, labels []string) ([]Score, error)

	// Transcribe converts raw audio bytes to text at the given sample rate.
	Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error)
}

// best returns the highest-scoring label. Ok is false for an empty score set.
func best(scores []Score) (Score, bool) {
	if len(scores) == 0 {
		return Score{}, false
	}
	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}
	return top, true
}
