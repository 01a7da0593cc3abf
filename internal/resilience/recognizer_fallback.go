package resilience

import (
	"fmt"

	"github.com/nullshift/vocalops/internal/recognizer"
)

// RecognizerFactory constructs a fresh [recognizer.Recognizer] for one
// transcriber session. Recognizers are stateful and exclusively owned by a
// single session (see internal/recognizer's package doc), so failover
// happens once, at session-construction time, rather than per-call the way
// [LLMFallback] retries per-request.
type RecognizerFactory func() (recognizer.Recognizer, error)

// RecognizerFallback selects the first backend whose circuit breaker is
// closed and whose factory succeeds, trying fallbacks in registration
// order. Each backend has its own circuit breaker so a backend that is
// failing to start sessions is skipped without affecting the others.
type RecognizerFallback struct {
	group *FallbackGroup[RecognizerFactory]
}

// NewRecognizerFallback creates a [RecognizerFallback] with primary as the
// preferred backend.
func NewRecognizerFallback(primary RecognizerFactory, primaryName string, cfg FallbackConfig) *RecognizerFallback {
	return &RecognizerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional recognizer factory as a fallback.
func (f *RecognizerFallback) AddFallback(name string, factory RecognizerFactory) {
	f.group.AddFallback(name, factory)
}

// New constructs a session recognizer from the first healthy backend.
func (f *RecognizerFallback) New() (recognizer.Recognizer, error) {
	rec, err := ExecuteWithResult(f.group, func(factory RecognizerFactory) (recognizer.Recognizer, error) {
		return factory()
	})
	if err != nil {
		return nil, fmt.Errorf("recognizer fallback: %w", err)
	}
	return rec, nil
}
