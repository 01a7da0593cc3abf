// Package turnpredict implements the Turn Predictor (spec §4.4): a pure
// function of a rolling audio window and the current committed text tail
// that estimates end-of-utterance probability at VAD SpeechEnd candidates.
package turnpredict

import (
	"context"

	"github.com/nullshift/vocalops/pkg/types"
)

// DefaultThreshold is the commit-confirmation threshold applied to
// Predictor output, per spec §4.4.
const DefaultThreshold = 0.5

// DefaultWindowMs is the maximum audio context considered by Predict.
const DefaultWindowMs = 8000

// Predictor estimates end-of-utterance probability. Implementations must be
// pure functions of their inputs — no side effects — and safe for
// concurrent use, since the transcriber may call Predict from its dedicated
// recognizer thread without additional synchronization.
type Predictor interface {
	// Predict returns a probability in [0,1] that the speaker has finished
	// their turn, given the last audioWindow of mono 16kHz float32 samples
	// (at most [DefaultWindowMs] worth) and textTail, the committed text
	// accumulated so far in the current utterance.
	Predict(ctx context.Context, audioWindow []float32, textTail string) (float64, error)
}

// Evaluate runs p.Predict and folds the result into a [types.TurnPrediction]
// against threshold, the caller's configured commit-confirmation bar.
func Evaluate(ctx context.Context, p Predictor, audioWindow []float32, textTail string, threshold float64) (types.TurnPrediction, error) {
	prob, err := p.Predict(ctx, audioWindow, textTail)
	if err != nil {
		return types.TurnPrediction{}, err
	}
	return types.TurnPrediction{
		Probability: prob,
		Threshold:   threshold,
		WillCommit:  prob >= threshold,
	}, nil
}
