// Package audio implements capture, hygiene, and zero-copy fan-out of the
// pipeline's 16 kHz mono PCM stream.
//
// The package is split into three concerns:
//
//   - [AudioFrame] and [Source] — the shared data model.
//   - [Backend] / [RawStream] — the platform-specific capture contract;
//     implementations live in adapter packages and are out of scope here.
//   - [Capture] — the hygiene pipeline (resample, DC removal, AGC, soft
//     clip) that turns a Backend's raw stream into fixed-cadence AudioFrames.
package audio

import "fmt"

// InternalSampleRate is the sample rate of every AudioFrame leaving the
// hygiene pipeline. The bus and every downstream consumer assume this rate.
const InternalSampleRate = 16000

// FrameSamples is the number of samples in one emitted AudioFrame at
// [InternalSampleRate], i.e. 50ms.
const FrameSamples = 800

// FrameDurationMs is the fixed cadence at which AudioFrames are emitted,
// regardless of the backend's native frame size or input rate.
const FrameDurationMs = 50

// Source names a symbolic audio origin. The concrete mapping to an OS
// device or mix is owned by the [Backend] implementation.
type Source int

const (
	SourceMicrophone Source = iota
	SourceSystem
	SourceCombined
)

// String returns the symbolic source name used in config and logs.
func (s Source) String() string {
	switch s {
	case SourceMicrophone:
		return "microphone"
	case SourceSystem:
		return "system"
	case SourceCombined:
		return "combined"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource maps a config string to a Source. Returns false for unknown
// names rather than defaulting silently.
func ParseSource(s string) (Source, bool) {
	switch s {
	case "microphone":
		return SourceMicrophone, true
	case "system":
		return SourceSystem, true
	case "combined":
		return SourceCombined, true
	default:
		return 0, false
	}
}

// AudioFrame is an immutable, shared-ownership unit of hygiene-processed
// audio: 32-bit float PCM, mono, always [InternalSampleRate] once it leaves
// [Capture]. Samples is never mutated after construction — Go's garbage
// collector is the lifecycle mechanism: a frame handed to N consumers is
// freed once the last reference (on the bus, in a consumer's queue, in a
// recognizer buffer) drops, with no explicit refcounting required.
//
// Two holders of the same AudioFrame observe byte-identical Samples; callers
// must never write through the slice. Copy Samples before mutating.
type AudioFrame struct {
	// Seq is a monotonically increasing sequence number assigned by Capture.
	// Consumers detect dropped or reordered frames by gaps in Seq.
	Seq uint64

	// CaptureMs is the capture timestamp in milliseconds since the session's
	// arbitrary epoch (session start).
	CaptureMs int64

	// SampleRate is always InternalSampleRate for frames produced by
	// Capture; callers constructing frames directly from a Backend's raw
	// format should not place them on the bus until hygiene has run.
	SampleRate int

	// Samples is the shared, read-only PCM buffer. Length is always
	// FrameSamples for frames produced by Capture.
	Samples []float32
}
