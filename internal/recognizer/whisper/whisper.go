// Package whisper adapts a whisper.cpp model into the [recognizer.Recognizer]
// contract. whisper.cpp is a batch encoder-decoder, not a streaming
// transducer, so this adapter implements "simulated streaming": Accept only
// buffers samples, and Partial/Finalize re-run inference over the entire
// accumulated buffer each time they are called, per the spec's design note
// that batch engines may satisfy the recognizer contract this way.
package whisper

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nullshift/vocalops/internal/recognizer"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

var _ recognizer.Recognizer = (*Recognizer)(nil)

const defaultLanguage = "en"

// Option configures a [Recognizer].
type Option func(*Recognizer)

// WithLanguage sets the BCP-47 language code passed to whisper.cpp. Defaults
// to "en".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) { r.language = lang }
}

// Recognizer wraps a shared whisper.cpp model, buffering samples for one
// streaming-transcriber session. Not safe for concurrent use across
// goroutines — exclusively owned by the transcriber's recognizer thread,
// per the recognizer contract.
type Recognizer struct {
	model    whisperlib.Model
	language string

	mu  sync.Mutex
	buf []float32
}

// New wraps model (already loaded, typically shared across sessions) for a
// single streaming session.
func New(model whisperlib.Model, opts ...Option) (*Recognizer, error) {
	if model == nil {
		return nil, errors.New("whisper: model must not be nil")
	}
	r := &Recognizer{model: model, language: defaultLanguage}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// LoadModel loads a whisper.cpp model from modelPath. The result should be
// shared across sessions via [New] and released with its Close method once.
func LoadModel(modelPath string) (whisperlib.Model, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	return model, nil
}

// Accept buffers samples. No inference runs until Partial or Finalize.
func (r *Recognizer) Accept(samples []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, samples...)
	return nil
}

// Partial re-decodes the entire accumulated buffer and returns the text.
// Buffered samples are left intact.
func (r *Recognizer) Partial() (string, error) {
	r.mu.Lock()
	samples := snapshot(r.buf)
	r.mu.Unlock()
	return r.decode(samples)
}

// Finalize decodes the accumulated buffer one last time, clears it, and
// returns the stable text. An empty buffer yields an empty string, not an
// error.
func (r *Recognizer) Finalize() (string, error) {
	r.mu.Lock()
	samples := snapshot(r.buf)
	r.buf = r.buf[:0]
	r.mu.Unlock()
	return r.decode(samples)
}

// Reset drops the accumulated buffer without running inference.
func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = r.buf[:0]
}

func snapshot(buf []float32) []float32 {
	out := make([]float32, len(buf))
	copy(out, buf)
	return out
}

// decode creates a fresh whisper.cpp context (contexts are not thread-safe,
// but the underlying model may be shared) and runs inference over samples.
func (r *Recognizer) decode(samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("whisper: set language %q: %w", r.language, err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
