package transcriber_test

import (
	"context"
	"testing"
	"time"

	"github.com/nullshift/vocalops/internal/recognizer/mock"
	turnmock "github.com/nullshift/vocalops/internal/turnpredict/mock"

	"github.com/nullshift/vocalops/internal/transcriber"
	"github.com/nullshift/vocalops/pkg/audio"
	vadprovider "github.com/nullshift/vocalops/pkg/provider/vad"
	vadmock "github.com/nullshift/vocalops/pkg/provider/vad/mock"
	"github.com/nullshift/vocalops/pkg/vad"
)

func newTestGate(session *vadmock.Session) *vad.Gate {
	return vad.NewGate(session, vad.Config{RedemptionTimeMs: 100, MinSpeechTimeMs: 50, SpeechThreshold: 0.5})
}

// frameSettle gives Run time to classify the previously pushed frame before
// the mock session's shared EventResult is changed for the next one; Run
// reads EventResult when it processes a frame, not when the frame is pushed.
const frameSettle = 20 * time.Millisecond

func speechFrame(session *vadmock.Session, captureMs int64) audio.AudioFrame {
	time.Sleep(frameSettle)
	session.EventResult = vadprovider.VADEvent{Probability: 0.9}
	return audio.AudioFrame{Samples: make([]float32, audio.FrameSamples), CaptureMs: captureMs}
}

func silenceFrame(session *vadmock.Session, captureMs int64) audio.AudioFrame {
	time.Sleep(frameSettle)
	session.EventResult = vadprovider.VADEvent{Probability: 0.1}
	return audio.AudioFrame{Samples: make([]float32, audio.FrameSamples), CaptureMs: captureMs}
}

func runTranscriber(t *testing.T, tr *transcriber.Transcriber) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestTranscriber_CommitsOnSpeechEndWhenPredictorConfirms(t *testing.T) {
	session := &vadmock.Session{}
	gate := newTestGate(session)
	rec := &mock.Recognizer{FinalText: "hello world"}
	pred := &turnmock.Predictor{Probability: 0.9}

	tr := transcriber.New(rec, gate, pred, transcriber.WithConfig(transcriber.Config{
		PartialCadenceMs:   50,
		StabilityWindowM:   3,
		MaxSegMs:           30_000,
		SilenceInjectionMs: 100,
		TurnThreshold:      0.5,
		TurnWindowMs:       8000,
	}))
	stop := runTranscriber(t, tr)
	defer stop()

	var ms int64
	for range 2 { // reach min speech time (50ms => 1 frame, give margin)
		tr.Push(speechFrame(session, ms))
		ms += 50
	}
	for range 2 { // reach redemption (100ms => 2 frames)
		tr.Push(silenceFrame(session, ms))
		ms += 50
	}

	var commit *struct{}
	_ = commit
	select {
	case ev, ok := <-tr.Events():
		if !ok {
			t.Fatal("events channel closed unexpectedly")
		}
		for ev.Commit == nil {
			ev, ok = <-tr.Events()
			if !ok {
				t.Fatal("events channel closed before Commit observed")
			}
		}
		if ev.Commit.Text != "hello world" {
			t.Errorf("expected committed text %q, got %q", "hello world", ev.Commit.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Commit event")
	}

	if tr.State() != transcriber.Idle {
		t.Errorf("expected Idle after commit, got %v", tr.State())
	}
}

func TestTranscriber_PredictorVetoResumesAccumulating(t *testing.T) {
	session := &vadmock.Session{}
	gate := newTestGate(session)
	rec := &mock.Recognizer{FinalText: "should not be used"}
	pred := &turnmock.Predictor{Probability: 0.1} // below threshold: veto

	tr := transcriber.New(rec, gate, pred)
	stop := runTranscriber(t, tr)
	defer stop()

	var ms int64
	for range 2 {
		tr.Push(speechFrame(session, ms))
		ms += 50
	}
	for range 2 {
		tr.Push(silenceFrame(session, ms))
		ms += 50
	}

	timeout := time.After(2 * time.Second)
	found := false
	for !found {
		select {
		case ev := <-tr.Events():
			if ev.TurnPrediction != nil {
				if ev.TurnPrediction.WillCommit {
					t.Error("expected WillCommit=false for low-probability predictor")
				}
				found = true
			}
		case <-timeout:
			t.Fatal("timed out waiting for TurnPrediction event")
		}
	}

	if tr.State() != transcriber.Accumulating {
		t.Errorf("expected Accumulating after predictor veto, got %v", tr.State())
	}
}

func TestTranscriber_EmptyFinalizeTextEmitsNoCommit(t *testing.T) {
	session := &vadmock.Session{}
	gate := newTestGate(session)
	rec := &mock.Recognizer{FinalText: ""}
	pred := &turnmock.Predictor{Probability: 0.9}

	tr := transcriber.New(rec, gate, pred)
	stop := runTranscriber(t, tr)
	defer stop()

	var ms int64
	for range 2 {
		tr.Push(speechFrame(session, ms))
		ms += 50
	}
	for range 2 {
		tr.Push(silenceFrame(session, ms))
		ms += 50
	}

	timeout := time.After(500 * time.Millisecond)
	for {
		select {
		case ev := <-tr.Events():
			if ev.Commit != nil {
				t.Fatalf("expected no Commit for empty finalize text, got %+v", ev.Commit)
			}
		case <-timeout:
			if tr.State() != transcriber.Idle {
				t.Errorf("expected Idle state after empty-text commit, got %v", tr.State())
			}
			return
		}
	}
}

func TestTranscriber_RecognizerAcceptErrorAbandonsUtterance(t *testing.T) {
	session := &vadmock.Session{}
	gate := newTestGate(session)
	rec := &mock.Recognizer{AcceptErr: errBoom}
	pred := &turnmock.Predictor{Probability: 0.9}

	tr := transcriber.New(rec, gate, pred)
	stop := runTranscriber(t, tr)
	defer stop()

	tr.Push(speechFrame(session, 0))
	tr.Push(speechFrame(session, 50))

	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case ev := <-tr.Events():
			if ev.Commit != nil {
				t.Fatalf("expected no Commit after Accept failure, got %+v", ev.Commit)
			}
		case <-deadline:
			if tr.State() != transcriber.Idle {
				t.Errorf("expected Idle after abandoning utterance, got %v", tr.State())
			}
			if rec.ResetCount < 1 {
				t.Error("expected recognizer Reset to be called on abandonment")
			}
			return
		}
	}
}

var errBoom = errFixed("boom")

type errFixed string

func (e errFixed) Error() string { return string(e) }
