// Package transcriber implements the Streaming Transcriber (spec §4.5): the
// four-state machine (Idle/Accumulating/PendingCommit/Committing) that
// drives a [recognizer.Recognizer] from a stream of 50ms [audio.AudioFrame]
// values and produces the ordered stream of partial, volatile, and
// committed text events consumed by the UI and the action router.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullshift/vocalops/internal/recognizer"
	"github.com/nullshift/vocalops/internal/turnpredict"
	"github.com/nullshift/vocalops/pkg/audio"
	"github.com/nullshift/vocalops/pkg/types"
	"github.com/nullshift/vocalops/pkg/vad"
)

const defaultFrameBuffer = 64

// Option is a functional option for configuring a [Transcriber].
type Option func(*Transcriber)

// WithConfig overrides the default [Config].
func WithConfig(cfg Config) Option {
	return func(t *Transcriber) { t.cfg = cfg }
}

// WithFrameBuffer sets the capacity of the internal frame channel. Default
// is 64 frames (3.2s at the fixed 50ms cadence).
func WithFrameBuffer(n int) Option {
	return func(t *Transcriber) { t.frameBuffer = n }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcriber) { t.log = l }
}

// Transcriber drives one [recognizer.Recognizer] session from a sequence of
// audio frames. One Transcriber per conversation session; its Run loop
// claims a dedicated OS thread for the lifetime of the session, matching
// the spec's requirement that recognizer inference never starves a
// cooperative scheduler.
type Transcriber struct {
	cfg         Config
	frameBuffer int
	log         *slog.Logger

	rec       recognizer.Recognizer
	gate      *vad.Gate
	predictor turnpredict.Predictor
	window    *turnpredict.Window

	frames chan audio.AudioFrame
	events chan Event

	closeOnce sync.Once

	state atomic.Int32

	// Fields below are owned exclusively by the Run goroutine; no
	// synchronization is needed since Run is single-threaded by
	// construction.
	ring       *stabilityRing
	bufferMs   int64
	segStartMs int64
}

// New constructs a Transcriber over rec, gate, and predictor. rec and gate
// are exclusively owned by the returned Transcriber's Run goroutine from
// this point on.
func New(rec recognizer.Recognizer, gate *vad.Gate, predictor turnpredict.Predictor, opts ...Option) *Transcriber {
	t := &Transcriber{
		cfg:         DefaultConfig(),
		frameBuffer: defaultFrameBuffer,
		log:         slog.Default(),
		rec:         rec,
		gate:        gate,
		predictor:   predictor,
	}
	for _, o := range opts {
		o(t)
	}
	t.window = turnpredict.NewWindow(t.cfg.TurnWindowMs)
	t.ring = newStabilityRing(t.cfg.StabilityWindowM)
	t.frames = make(chan audio.AudioFrame, t.frameBuffer)
	t.events = make(chan Event, t.frameBuffer)
	return t
}

// Events returns the channel on which PartialUpdate, Commit, and
// TurnPrediction events are delivered, in emission order.
func (t *Transcriber) Events() <-chan Event {
	return t.events
}

// State returns the transcriber's current state. Safe for concurrent use.
func (t *Transcriber) State() State {
	return State(t.state.Load())
}

// Push enqueues one 50ms frame for processing. Returns ErrFramesFull if the
// internal channel is saturated; the caller should treat this as a
// BusBackpressure condition and drop the frame.
func (t *Transcriber) Push(frame audio.AudioFrame) error {
	select {
	case t.frames <- frame:
		return nil
	default:
		return ErrFramesFull
	}
}

// Close stops accepting new frames. Run returns once the frame channel
// drains, or earlier if ctx is cancelled.
func (t *Transcriber) Close() error {
	t.closeOnce.Do(func() { close(t.frames) })
	return nil
}

// Run processes frames until ctx is cancelled or the frame channel is
// closed and drained. It locks the calling goroutine to its OS thread for
// its entire duration, since recognizer inference is CPU-bound work that
// must not be descheduled onto a cooperative scheduler.
func (t *Transcriber) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.events)

	ticker := time.NewTicker(time.Duration(t.cfg.PartialCadenceMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-t.frames:
			if !ok {
				return nil
			}
			t.handleFrame(ctx, frame)

		case <-ticker.C:
			if t.State() == Accumulating {
				t.emitPartial()
			}
		}
	}
}

func (t *Transcriber) setState(s State) {
	t.state.Store(int32(s))
}

func (t *Transcriber) emit(e Event) {
	select {
	case t.events <- e:
	default:
		t.log.Warn("transcriber: event channel full, dropping event")
	}
}

func (t *Transcriber) handleFrame(ctx context.Context, frame audio.AudioFrame) {
	switch t.State() {
	case Idle:
		t.handleIdleFrame(frame)
	case Accumulating:
		t.handleAccumulatingFrame(ctx, frame)
	default:
		// PendingCommit/Committing are resolved synchronously within the
		// call that entered them; no frame should arrive while in either.
		t.log.Warn("transcriber: frame received in transient state", "state", t.State())
	}
}

func (t *Transcriber) handleIdleFrame(frame audio.AudioFrame) {
	ev, err := t.gate.Push(frame)
	if err != nil {
		t.log.Error("transcriber: vad gate error", "err", err)
		return
	}
	if ev.Kind != vad.SpeechStart {
		return
	}

	t.segStartMs = frame.CaptureMs
	t.bufferMs = 0
	t.ring.reset()
	t.window.Reset()
	t.setState(Accumulating)

	if err := t.rec.Accept(frame.Samples); err != nil {
		t.abandon(err)
		return
	}
	t.window.Push(frame)
	t.bufferMs += audio.FrameDurationMs
}

func (t *Transcriber) handleAccumulatingFrame(ctx context.Context, frame audio.AudioFrame) {
	ev, err := t.gate.Push(frame)
	if err != nil {
		t.log.Error("transcriber: vad gate error", "err", err)
		return
	}

	if err := t.rec.Accept(frame.Samples); err != nil {
		t.abandon(err)
		return
	}
	t.window.Push(frame)
	t.bufferMs += audio.FrameDurationMs

	// Tie-break per spec §4.5: VAD SpeechEnd wins over a same-frame forced
	// commit condition, so the predictor pathway runs; a forced commit does
	// not consult the predictor.
	switch {
	case ev.Kind == vad.SpeechEnd:
		t.onSpeechEnd(ctx)
	case t.bufferMs >= t.cfg.MaxSegMs:
		t.forceCommit(ctx)
	}
}

func (t *Transcriber) onSpeechEnd(ctx context.Context) {
	t.setState(PendingCommit)

	pred, err := turnpredict.Evaluate(ctx, t.predictor, t.window.Snapshot(), t.currentStableText(), t.cfg.TurnThreshold)
	if err != nil {
		// TurnPredictionFailure (§7): degrade to commit immediately.
		t.log.Warn("transcriber: turn prediction failed, committing immediately", "err", err)
		t.commit(ctx)
		return
	}
	t.emit(Event{TurnPrediction: &pred})

	if pred.WillCommit {
		t.commit(ctx)
		return
	}

	// Predictor vetoed the VAD's SpeechEnd candidate; resume accumulating.
	t.setState(Accumulating)
}

func (t *Transcriber) forceCommit(ctx context.Context) {
	t.setState(Committing)
	t.finalizeForced(ctx)
}

// commit performs the normal end-of-utterance commit: the entire finalized
// text is emitted as one Segment, and the session returns to Idle. The VAD
// gate is reset since speech has genuinely ended.
func (t *Transcriber) commit(ctx context.Context) {
	t.setState(Committing)

	text, err := t.finalize()
	endMs := t.segStartMs + t.bufferMs
	if err != nil {
		// Errors on finalize degrade to emitting whatever stable text was
		// tracked (§4.5 Failure).
		text = t.currentStableText()
	}
	text = normalize(text)

	if text != "" {
		t.emit(Event{Commit: &types.Segment{
			ID:      segmentID(t.segStartMs, endMs),
			Text:    text,
			StartMs: t.segStartMs,
			EndMs:   endMs,
			Final:   true,
		}})
	}

	t.gate.Reset()
	t.ring.reset()
	t.window.Reset()
	t.bufferMs = 0
	t.setState(Idle)
}

// finalizeForced handles the MAX_SEG_MS forced-commit path. Unlike commit,
// speech has not actually ended: the VAD gate is left untouched (it is
// still tracking the ongoing utterance), and only the portion of the
// finalized text that has reached word-stability is emitted — the volatile
// tail is carried forward as the seed for the new utterance's stability
// tracking, per spec §4.5's "remaining volatile tail is carried into a new
// utterance."
func (t *Transcriber) finalizeForced(ctx context.Context) {
	text, err := t.finalize()
	endMs := t.segStartMs + t.bufferMs
	if err != nil {
		text = t.currentStableText()
	}
	text = normalize(text)

	t.ring.push(splitWords(text))
	stable, volatile := t.ring.split()

	if len(stable) > 0 {
		t.emit(Event{Commit: &types.Segment{
			ID:      segmentID(t.segStartMs, endMs),
			Text:    joinWords(stable),
			StartMs: t.segStartMs,
			EndMs:   endMs,
			Final:   true,
		}})
	}

	t.ring.reset()
	if len(volatile) > 0 {
		t.ring.push(volatile)
	}
	t.window.Reset()
	t.segStartMs = endMs
	t.bufferMs = 0
	t.setState(Accumulating)
}

// finalize injects the required silence padding and calls Finalize.
func (t *Transcriber) finalize() (string, error) {
	silence := make([]float32, silenceSampleCount(t.cfg.SilenceInjectionMs))
	if err := t.rec.Accept(silence); err != nil {
		return "", fmt.Errorf("transcriber: silence injection: %w", err)
	}
	return t.rec.Finalize()
}

func (t *Transcriber) emitPartial() {
	raw, err := t.rec.Partial()
	if err != nil {
		t.abandon(err)
		return
	}

	t.ring.push(splitWords(normalize(raw)))
	stable, volatile := t.ring.split()

	t.emit(Event{Partial: &types.PartialUpdate{
		Partial:  joinWords(stable),
		Volatile: joinWords(volatile),
		BufferMs: t.bufferMs,
	}})
}

func (t *Transcriber) currentStableText() string {
	stable, _ := t.ring.split()
	return joinWords(stable)
}

// abandon implements the RecognizerFailure path (§7): the current utterance
// is discarded, all state is reset, and no Commit is emitted.
func (t *Transcriber) abandon(err error) {
	t.log.Error("transcriber: recognizer failure, abandoning utterance", "err", err)
	t.rec.Reset()
	t.gate.Reset()
	t.ring.reset()
	t.window.Reset()
	t.bufferMs = 0
	t.setState(Idle)
}

func silenceSampleCount(ms int64) int {
	return int(ms) * audio.InternalSampleRate / 1000
}

func segmentID(startMs, endMs int64) string {
	return fmt.Sprintf("seg-%d-%d", startMs, endMs)
}
