// Package bus implements the zero-copy fan-out of hygiene-processed
// [audio.AudioFrame] values from the single capture producer to N
// consumers, with bounded per-consumer backpressure and a drop-oldest
// policy.
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/nullshift/vocalops/pkg/audio"
)

// QueueFrames is the number of frames each [Listener]'s queue holds before
// the oldest is discarded to make room, sized for ~1.5s of audio at the
// fixed 50ms frame cadence.
const QueueFrames = 30

// Bus fans out AudioFrames published by a single producer to any number of
// subscribed [Listener]s. Publish never blocks: a slow consumer only ever
// loses its own oldest queued frames, never the producer's cadence.
//
// Safe for concurrent use: Publish is called from the capture thread,
// Subscribe/Unsubscribe from session setup/teardown.
type Bus struct {
	mu        sync.RWMutex
	listeners map[int64]*Listener
	nextID    int64

	published atomic.Uint64
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[int64]*Listener)}
}

// Publish delivers frame to every current subscriber. Never blocks: a
// listener whose queue is full has its oldest frame evicted and its dropped
// counter incremented instead.
func (b *Bus) Publish(frame audio.AudioFrame) {
	b.published.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		l.push(frame)
	}
}

// Subscribe registers a new Listener and returns it. Call [Listener.Close]
// (via [Bus.Unsubscribe] or directly) when the consumer is done.
func (b *Bus) Subscribe() *Listener {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	l := &Listener{
		id:     id,
		bus:    b,
		notify: make(chan struct{}, 1),
	}
	b.listeners[id] = l
	return l
}

// Unsubscribe removes l from the fan-out set and closes it. Safe to call
// more than once.
func (b *Bus) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l.id)
	b.mu.Unlock()
	l.close()
}

// Published returns the total number of frames ever passed to Publish.
func (b *Bus) Published() uint64 {
	return b.published.Load()
}

// ListenerCount returns the number of currently subscribed listeners.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
