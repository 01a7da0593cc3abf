// Package mock provides a test double for [turnpredict.Predictor].
package mock

import (
	"context"
	"sync"

	"github.com/nullshift/vocalops/internal/turnpredict"
)

// Call records a single invocation of Predictor.Predict.
type Call struct {
	AudioWindow []float32
	TextTail    string
}

// Predictor is a mock implementation of [turnpredict.Predictor].
type Predictor struct {
	mu sync.Mutex

	// Probability is returned by every Predict call.
	Probability float64

	// Err, if non-nil, is returned by every Predict call.
	Err error

	// Calls records every invocation in order.
	Calls []Call
}

// Predict records the call and returns Probability, Err.
func (p *Predictor) Predict(ctx context.Context, audioWindow []float32, textTail string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]float32, len(audioWindow))
	copy(cp, audioWindow)
	p.Calls = append(p.Calls, Call{AudioWindow: cp, TextTail: textTail})
	return p.Probability, p.Err
}

var _ turnpredict.Predictor = (*Predictor)(nil)
