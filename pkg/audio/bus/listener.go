package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nullshift/vocalops/pkg/audio"
)

// Listener is a bounded per-consumer queue onto the [Bus]'s fan-out. Obtain
// one with [Bus.Subscribe].
//
// Safe for concurrent use, though a Listener is normally owned by a single
// consuming goroutine.
type Listener struct {
	id  int64
	bus *Bus

	mu    sync.Mutex
	queue []audio.AudioFrame

	notify chan struct{}
	closed bool

	lastSeq     uint64
	haveLastSeq bool

	dropped atomic.Uint64
	gaps    atomic.Uint64
}

// push enqueues frame, evicting the oldest queued frame first if the queue
// is already at [QueueFrames] capacity. Never blocks.
func (l *Listener) push(frame audio.AudioFrame) {
	l.mu.Lock()
	if len(l.queue) >= QueueFrames {
		l.queue = l.queue[1:]
		l.dropped.Add(1)
	}
	l.queue = append(l.queue, frame)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Recv blocks until the next frame is available, ctx is cancelled, or the
// Listener is closed.
func (l *Listener) Recv(ctx context.Context) (audio.AudioFrame, error) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			frame := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()
			l.trackSeq(frame)
			return frame, nil
		}
		closed := l.closed
		l.mu.Unlock()

		if closed {
			return audio.AudioFrame{}, ErrClosed
		}

		select {
		case <-l.notify:
			continue
		case <-ctx.Done():
			return audio.AudioFrame{}, ctx.Err()
		}
	}
}

// DrainToLatest discards every frame currently queued except the newest,
// returning it. Returns ok=false if the queue is empty. This is the
// recommended access pattern for consumers (VAD, streaming decode) that
// care about "now" rather than completeness.
func (l *Listener) DrainToLatest() (frame audio.AudioFrame, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return audio.AudioFrame{}, false
	}
	latest := l.queue[len(l.queue)-1]
	l.queue = l.queue[:0]
	l.trackSeqLocked(latest)
	return latest, true
}

// trackSeq updates gap detection state; it acquires mu itself.
func (l *Listener) trackSeq(frame audio.AudioFrame) {
	l.mu.Lock()
	l.trackSeqLocked(frame)
	l.mu.Unlock()
}

// trackSeqLocked updates gap detection state; mu must already be held.
func (l *Listener) trackSeqLocked(frame audio.AudioFrame) {
	if l.haveLastSeq && frame.Seq != l.lastSeq+1 {
		l.gaps.Add(1)
	}
	l.lastSeq = frame.Seq
	l.haveLastSeq = true
}

// Dropped returns the number of frames evicted from this listener's queue
// due to backpressure.
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// GapsDetected returns the number of non-consecutive sequence-number jumps
// observed by this listener.
func (l *Listener) GapsDetected() uint64 {
	return l.gaps.Load()
}

// Close removes this listener from its Bus and releases it. Safe to call
// more than once.
func (l *Listener) Close() {
	l.bus.Unsubscribe(l)
}

// close marks the listener closed and wakes any blocked Recv. Called by
// [Bus.Unsubscribe]; not exported because closing must go through the bus
// to also remove it from the fan-out map.
func (l *Listener) close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}
