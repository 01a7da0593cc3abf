package transcriber

import "github.com/nullshift/vocalops/internal/turnpredict"

// Defaults per spec §4.5.
const (
	// DefaultPartialCadenceMs is the minimum wall-clock interval between
	// PartialUpdate emissions while Accumulating.
	DefaultPartialCadenceMs = 500

	// DefaultStabilityWindowM is the number of consecutive partial decodes
	// (M) a word must agree across to be promoted from volatile to stable.
	DefaultStabilityWindowM = 3

	// DefaultMaxSegMs is the buffer duration at which a forced commit fires
	// absent a VAD SpeechEnd.
	DefaultMaxSegMs = 30_000

	// DefaultSilenceInjectionMs is the duration of zero samples fed to the
	// recognizer immediately before Finalize, to flush decoder state and
	// suppress end-of-utterance hallucination.
	DefaultSilenceInjectionMs = 100
)

// Config configures a [Transcriber].
type Config struct {
	PartialCadenceMs   int64
	StabilityWindowM   int
	MaxSegMs           int64
	SilenceInjectionMs int64

	// TurnThreshold is the commit-confirmation probability threshold passed
	// to turnpredict.Evaluate.
	TurnThreshold float64

	// TurnWindowMs bounds the rolling audio window handed to the turn
	// predictor.
	TurnWindowMs int
}

// DefaultConfig returns the spec's default Transcriber configuration.
func DefaultConfig() Config {
	return Config{
		PartialCadenceMs:   DefaultPartialCadenceMs,
		StabilityWindowM:   DefaultStabilityWindowM,
		MaxSegMs:           DefaultMaxSegMs,
		SilenceInjectionMs: DefaultSilenceInjectionMs,
		TurnThreshold:      turnpredict.DefaultThreshold,
		TurnWindowMs:       turnpredict.DefaultWindowMs,
	}
}
