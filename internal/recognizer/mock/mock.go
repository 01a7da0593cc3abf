// Package mock provides a test double for [recognizer.Recognizer].
package mock

import (
	"sync"

	"github.com/nullshift/vocalops/internal/recognizer"
)

// Recognizer is a mock implementation of [recognizer.Recognizer].
type Recognizer struct {
	mu sync.Mutex

	// PartialText is returned by every Partial call.
	PartialText string

	// FinalText is returned by every Finalize call.
	FinalText string

	// AcceptErr, PartialErr, FinalizeErr, if non-nil, are returned by the
	// corresponding method.
	AcceptErr   error
	PartialErr  error
	FinalizeErr error

	// Accepted accumulates every sample slice passed to Accept, in order.
	Accepted [][]float32

	// ResetCount is the number of times Reset was called.
	ResetCount int
}

func (r *Recognizer) Accept(samples []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	r.Accepted = append(r.Accepted, cp)
	return r.AcceptErr
}

func (r *Recognizer) Partial() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.PartialText, r.PartialErr
}

func (r *Recognizer) Finalize() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.FinalText, r.FinalizeErr
}

func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResetCount++
	r.Accepted = nil
}

var _ recognizer.Recognizer = (*Recognizer)(nil)
