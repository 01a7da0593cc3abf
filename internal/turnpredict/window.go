package turnpredict

import "github.com/nullshift/vocalops/pkg/audio"

// Window accumulates a rolling buffer of mono 16kHz samples bounded to a
// fixed duration, feeding [Predictor.Predict]'s audioWindow argument. Not
// safe for concurrent use — owned by the transcriber's single recognizer
// thread.
type Window struct {
	maxSamples int
	buf        []float32
}

// NewWindow returns a Window holding at most windowMs of audio at
// [audio.InternalSampleRate].
func NewWindow(windowMs int) *Window {
	maxSamples := windowMs * audio.InternalSampleRate / 1000
	return &Window{maxSamples: maxSamples}
}

// Push appends frame's samples, trimming the oldest samples once the window
// exceeds its configured duration.
func (w *Window) Push(frame audio.AudioFrame) {
	w.buf = append(w.buf, frame.Samples...)
	if excess := len(w.buf) - w.maxSamples; excess > 0 {
		w.buf = w.buf[excess:]
	}
}

// Reset clears the window, e.g. on commit or recognizer reset.
func (w *Window) Reset() {
	w.buf = w.buf[:0]
}

// Snapshot returns a copy of the current window contents, safe to hand to a
// Predictor implementation running on another goroutine.
func (w *Window) Snapshot() []float32 {
	out := make([]float32, len(w.buf))
	copy(out, w.buf)
	return out
}
