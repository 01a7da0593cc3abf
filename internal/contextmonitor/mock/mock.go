// Package mock provides a test double for [contextmonitor.Poller].
package mock

import (
	"context"
	"sync"

	"github.com/nullshift/vocalops/internal/contextmonitor"
)

// Poller is a mock implementation of [contextmonitor.Poller]. States are
// consumed in order, one per Poll call; the last state is repeated once
// the slice is exhausted.
type Poller struct {
	mu sync.Mutex

	States []contextmonitor.RawState
	Err    error

	next int
}

// Poll returns the next queued state, or Err if set.
func (p *Poller) Poll(ctx context.Context) (contextmonitor.RawState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return contextmonitor.RawState{}, p.Err
	}
	if len(p.States) == 0 {
		return contextmonitor.RawState{}, nil
	}
	idx := p.next
	if idx >= len(p.States) {
		idx = len(p.States) - 1
	} else {
		p.next++
	}
	return p.States[idx], nil
}

var _ contextmonitor.Poller = (*Poller)(nil)
