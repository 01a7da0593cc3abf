package audio

import "context"

// RawFrame is a chunk of audio as delivered by a [Backend], before hygiene
// processing. Native sample rate and channel count are backend-specific;
// [Capture] normalizes every RawFrame into fixed-cadence [AudioFrame]
// values.
type RawFrame struct {
	// Data holds interleaved float32 PCM samples at the backend's native
	// rate and channel count.
	Data []float32

	// SampleRate is the backend's native capture rate in Hz.
	SampleRate int

	// Channels is the backend's native channel count (1 for mono, 2 for
	// stereo, etc).
	Channels int

	// CaptureMs is the backend's own capture timestamp, milliseconds since
	// an arbitrary epoch fixed at Open.
	CaptureMs int64
}

// RawStream is an open capture session on a [Backend]. Frames is read until
// the backend closes it, which happens on [RawStream.Close] or on a fatal
// capture error.
type RawStream interface {
	// Frames returns the channel of raw frames. Closed when the stream
	// ends, whether by Close or by a terminal backend error.
	Frames() <-chan RawFrame

	// Err returns the error that caused Frames to close, or nil if it
	// closed because Close was called. Safe to call only after Frames is
	// observed closed.
	Err() error

	// Close stops capture and releases backend resources. Safe to call
	// more than once.
	Close() error
}

// Backend is the platform-specific entry point for acquiring a raw audio
// stream from a symbolic [Source]. Concrete implementations (OS microphone
// APIs, a system-audio loopback, a combined mixer) are adapter packages not
// defined here — see pkg/audio/capture for the PulseAudio, PipeWire, and
// Opus-socket implementations this module ships.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Open acquires source and returns a RawStream delivering its audio.
	// The supplied ctx governs the acquisition attempt only; once open, the
	// stream remains live until Close is called or it fails terminally.
	Open(ctx context.Context, source Source) (RawStream, error)
}
