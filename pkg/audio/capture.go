package audio

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// maxOpenAttempts is the total number of backend Open attempts
// [Capture.Start] makes before giving up with [CaptureUnavailableError].
const maxOpenAttempts = 3

// openBackoffBase is the base delay for the exponential backoff between
// Open attempts (base, then 2*base).
const openBackoffBase = 250 * time.Millisecond

// Options configures the hygiene pipeline. The zero value is not valid; use
// [DefaultOptions].
type Options struct {
	// LinearResample selects linear interpolation instead of the default
	// band-limited sinc resampler. Opt-in only: linear resampling
	// measurably degrades transcription accuracy.
	LinearResample bool
}

// DefaultOptions returns the spec-mandated defaults: sinc resampling.
func DefaultOptions() Options {
	return Options{LinearResample: false}
}

// Capture runs the hygiene pipeline over a [Backend]'s raw stream, emitting
// fixed-cadence 16kHz mono [AudioFrame] values. One Capture handles one
// session; Start must not be called again until Stop returns.
type Capture struct {
	backend Backend
	opts    Options

	mu     sync.Mutex
	stream RawStream

	seq       atomic.Uint64
	levelBits atomic.Uint64 // math.Float64bits of the last RMS dBFS reading
}

// NewCapture builds a Capture over backend with the given options.
func NewCapture(backend Backend, opts Options) *Capture {
	c := &Capture{backend: backend, opts: opts}
	c.levelBits.Store(math.Float64bits(-120))
	return c
}

// Start acquires source via the backend, making up to maxOpenAttempts
// attempts with exponential backoff between them, and returns a channel of hygiene-processed
// AudioFrames. The returned error channel receives at most one value: a
// fatal [CaptureUnavailableError] if the stream fails after a successful
// start. Both channels are closed when the stream ends.
//
// ctx governs the acquisition attempts; once streaming starts, the session
// runs until Stop is called or the backend fails terminally.
func (c *Capture) Start(ctx context.Context, source Source) (<-chan AudioFrame, <-chan error, error) {
	var stream RawStream
	var lastErr error
	for attempt := 1; attempt <= maxOpenAttempts; attempt++ {
		s, err := c.backend.Open(ctx, source)
		if err == nil {
			stream = s
			break
		}
		lastErr = err
		slog.Warn("audio capture: open failed, retrying",
			"source", source, "attempt", attempt, "error", err)
		if attempt == maxOpenAttempts {
			break
		}
		backoff := openBackoffBase * time.Duration(1<<(attempt-1))
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if stream == nil {
		return nil, nil, &CaptureUnavailableError{Source: source, Attempts: maxOpenAttempts, Err: lastErr}
	}

	c.mu.Lock()
	c.stream = stream
	c.mu.Unlock()

	out := make(chan AudioFrame, 4)
	errc := make(chan error, 1)

	go c.run(source, stream, out, errc)

	return out, errc, nil
}

// Stop tears down the active stream. Safe to call more than once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	s := c.stream
	c.mu.Unlock()
	if s != nil {
		return s.Close()
	}
	return nil
}

// Level returns the most recent RMS level in dBFS, post-AGC. Safe for
// concurrent use.
func (c *Capture) Level() float64 {
	return math.Float64frombits(c.levelBits.Load())
}

func (c *Capture) run(source Source, stream RawStream, out chan<- AudioFrame, errc chan<- error) {
	defer close(out)
	defer close(errc)

	dc := newDCBlocker(InternalSampleRate)
	gain := newAGC()

	var buf []float32
	var baseMs int64
	haveBase := false

	for raw := range stream.Frames() {
		if !haveBase {
			baseMs = raw.CaptureMs
			haveBase = true
		}

		mono := Downmix(raw.Data, raw.Channels)

		var resampled []float32
		if c.opts.LinearResample {
			resampled = LinearResample(mono, raw.SampleRate, InternalSampleRate)
		} else {
			resampled = SincResample(mono, raw.SampleRate, InternalSampleRate)
		}

		dc.Process(resampled)
		gain.Process(resampled)
		c.levelBits.Store(math.Float64bits(rmsDBFS(resampled)))

		buf = append(buf, resampled...)

		for len(buf) >= FrameSamples {
			chunk := make([]float32, FrameSamples)
			copy(chunk, buf[:FrameSamples])
			buf = buf[FrameSamples:]

			seq := c.seq.Add(1) - 1
			out <- AudioFrame{
				Seq:        seq,
				CaptureMs:  baseMs + int64(seq)*FrameDurationMs,
				SampleRate: InternalSampleRate,
				Samples:    chunk,
			}
		}
	}

	if err := stream.Err(); err != nil {
		errc <- &CaptureUnavailableError{Source: source, Attempts: 1, Err: err}
	}
}
