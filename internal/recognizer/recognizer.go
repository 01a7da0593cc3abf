// Package recognizer defines the STT plug-in contract the streaming
// transcriber drives (spec §6): a stateful capability set of accept,
// partial, finalize, and reset. A streaming transducer backend can
// implement this directly; a batch encoder-decoder implements it as
// "simulated streaming" by re-decoding a growing buffer (see the
// internal/recognizer/whisper adapter).
//
// The transcriber does not distinguish between the two — it only requires
// these four operations and a declared sample rate of 16000.
package recognizer

// Recognizer is exclusively owned by one streaming transcriber session at a
// time; it is never shared across goroutines. Implementations need not be
// safe for concurrent use.
type Recognizer interface {
	// Accept feeds 16kHz mono float32 samples into the acoustic model.
	Accept(samples []float32) error

	// Partial returns the current best hypothesis for the in-progress
	// utterance. May be called repeatedly; the result may change between
	// calls as more audio accumulates.
	Partial() (string, error)

	// Finalize flushes the current utterance, returns stable text, and
	// resets internal decoder state as a side effect.
	Finalize() (string, error)

	// Reset drops all internal state without producing output.
	Reset()
}

// SampleRate is the fixed input rate every Recognizer implementation must
// accept, matching the hygiene pipeline's output.
const SampleRate = 16000
