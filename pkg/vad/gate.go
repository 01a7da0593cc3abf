// Package vad implements the VAD Gate (spec §4.3): per-frame speech/silence
// hysteresis on top of a frame-level speech-probability classifier.
//
// The classifier itself — [vadprovider.Engine] / [vadprovider.SessionHandle]
// — is a plug-in backend (Silero, WebRTC VAD, or a mock for tests); [Gate]
// owns the three-phase state machine (Idle/Speaking/Pending) and the
// redemption/min-speech-time hysteresis the spec requires on top of it.
package vad

import (
	"github.com/nullshift/vocalops/pkg/audio"
	vadprovider "github.com/nullshift/vocalops/pkg/provider/vad"
)

// Phase is the Gate's internal hysteresis state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpeaking
	PhasePending
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSpeaking:
		return "speaking"
	case PhasePending:
		return "pending"
	default:
		return "idle"
	}
}

// EventKind classifies a [VadEvent].
type EventKind int

const (
	SpeechStart EventKind = iota
	SpeechContinue
	SpeechEnd
	Silence
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case SpeechStart:
		return "speech_start"
	case SpeechContinue:
		return "speech_continue"
	case SpeechEnd:
		return "speech_end"
	default:
		return "silence"
	}
}

// VadEvent is the Gate's per-frame output.
type VadEvent struct {
	Kind        EventKind
	Probability float64
}

// Redemption presets in milliseconds, per spec §4.3.
const (
	Redemption300  = 300
	Redemption500  = 500
	Redemption1000 = 1000
)

// DefaultMinSpeechTimeMs is the minimum continuous speech duration before
// SpeechStart fires.
const DefaultMinSpeechTimeMs = 200

// DefaultSpeechThreshold is the classifier probability above which a frame
// counts as speech for hysteresis purposes.
const DefaultSpeechThreshold = 0.5

// Config configures a [Gate].
type Config struct {
	// RedemptionTimeMs is the silence duration required after speech before
	// SpeechEnd fires. One of the Redemption* presets, or any positive
	// value.
	RedemptionTimeMs int

	// MinSpeechTimeMs is the minimum continuous speech duration before
	// SpeechStart fires.
	MinSpeechTimeMs int

	// SpeechThreshold is the classifier probability above which a frame is
	// treated as speech.
	SpeechThreshold float64
}

// DefaultConfig returns the spec's default Gate configuration.
func DefaultConfig() Config {
	return Config{
		RedemptionTimeMs: Redemption500,
		MinSpeechTimeMs:  DefaultMinSpeechTimeMs,
		SpeechThreshold:  DefaultSpeechThreshold,
	}
}

// Gate applies Idle/Speaking/Pending hysteresis to a stream of AudioFrames
// using an underlying [vadprovider.SessionHandle] as its frame-level
// classifier. Not safe for concurrent use — one Gate per session, pushed
// from a single goroutine, matching the spec's dedicated-OS-thread model
// for VAD.
type Gate struct {
	session vadprovider.SessionHandle
	cfg     Config

	phase Phase

	speechAccumMs  int64
	silenceAccumMs int64
}

// NewGate builds a Gate over session with cfg.
func NewGate(session vadprovider.SessionHandle, cfg Config) *Gate {
	return &Gate{session: session, cfg: cfg, phase: PhaseIdle}
}

// Phase returns the Gate's current phase.
func (g *Gate) Phase() Phase {
	return g.phase
}

// Push classifies frame and advances the hysteresis state machine,
// returning the resulting event.
func (g *Gate) Push(frame audio.AudioFrame) (VadEvent, error) {
	raw, err := g.session.ProcessFrame(samplesToPCM16(frame.Samples))
	if err != nil {
		return VadEvent{}, err
	}

	isSpeech := raw.Probability >= g.cfg.SpeechThreshold
	const frameMs = int64(audio.FrameDurationMs)

	switch g.phase {
	case PhaseIdle:
		if isSpeech {
			g.speechAccumMs += frameMs
			if g.speechAccumMs >= int64(g.cfg.MinSpeechTimeMs) {
				g.phase = PhaseSpeaking
				g.speechAccumMs = 0
				return VadEvent{Kind: SpeechStart, Probability: raw.Probability}, nil
			}
		} else {
			g.speechAccumMs = 0
		}
		return VadEvent{Kind: Silence, Probability: raw.Probability}, nil

	case PhaseSpeaking:
		if isSpeech {
			g.silenceAccumMs = 0
			return VadEvent{Kind: SpeechContinue, Probability: raw.Probability}, nil
		}
		g.phase = PhasePending
		g.silenceAccumMs = frameMs
		return VadEvent{Kind: SpeechContinue, Probability: raw.Probability}, nil

	case PhasePending:
		if isSpeech {
			g.phase = PhaseSpeaking
			g.silenceAccumMs = 0
			return VadEvent{Kind: SpeechContinue, Probability: raw.Probability}, nil
		}
		g.silenceAccumMs += frameMs
		if g.silenceAccumMs >= int64(g.cfg.RedemptionTimeMs) {
			g.phase = PhaseIdle
			g.silenceAccumMs = 0
			return VadEvent{Kind: SpeechEnd, Probability: raw.Probability}, nil
		}
		return VadEvent{Kind: SpeechContinue, Probability: raw.Probability}, nil
	}

	return VadEvent{Kind: Silence, Probability: raw.Probability}, nil
}

// Reset clears hysteresis state and resets the underlying classifier
// session.
func (g *Gate) Reset() {
	g.phase = PhaseIdle
	g.speechAccumMs = 0
	g.silenceAccumMs = 0
	g.session.Reset()
}

// Close releases the underlying classifier session.
func (g *Gate) Close() error {
	return g.session.Close()
}
