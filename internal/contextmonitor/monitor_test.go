package contextmonitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nullshift/vocalops/internal/contextmonitor"
	"github.com/nullshift/vocalops/internal/contextmonitor/mock"
	"github.com/nullshift/vocalops/pkg/types"
)

func testConfig() contextmonitor.Config {
	return contextmonitor.Config{
		PollHz: 20, // clamped to MaxPollHz: one real tick every 500ms
		MeetingApps: map[string]struct{}{
			"zoom.us": {},
		},
		DevApps: map[string]struct{}{
			"code": {},
		},
		WriterApps: map[string]struct{}{
			"notion": {},
		},
	}
}

func drainOne(t *testing.T, events <-chan types.Context) types.Context {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("events channel closed before expected event")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ContextChanged event")
		return types.Context{}
	}
}

func TestMonitor_EmitsOnFirstPoll(t *testing.T) {
	poller := &mock.Poller{States: []contextmonitor.RawState{
		{ActiveAppID: "code", ActiveAppName: "VS Code"},
	}}
	m := contextmonitor.New(poller, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ev := drainOne(t, m.Events())
	if ev.Effective() != types.ModeDev {
		t.Errorf("expected ModeDev, got %v", ev.Effective())
	}
	if ev.ActiveAppID != "code" {
		t.Errorf("expected ActiveAppID=code, got %q", ev.ActiveAppID)
	}
}

func TestMonitor_SuppressesRepeatWithNoTransition(t *testing.T) {
	poller := &mock.Poller{States: []contextmonitor.RawState{
		{ActiveAppID: "code"},
		{ActiveAppID: "code"},
		{ActiveAppID: "code"},
		{ActiveAppID: "notion"},
	}}
	m := contextmonitor.New(poller, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	first := drainOne(t, m.Events())
	if first.Effective() != types.ModeDev {
		t.Fatalf("expected first event ModeDev, got %v", first.Effective())
	}

	second := drainOne(t, m.Events())
	if second.Effective() != types.ModeWriter || second.ActiveAppID != "notion" {
		t.Fatalf("expected second event to be the notion transition, got %+v", second)
	}
}

func TestMonitor_MeetingTakesPriorityOverDevAndWriter(t *testing.T) {
	poller := &mock.Poller{States: []contextmonitor.RawState{
		{ActiveAppID: "code", MicActive: true, MicHolders: []string{"zoom.us"}},
	}}
	m := contextmonitor.New(poller, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ev := drainOne(t, m.Events())
	if ev.Effective() != types.ModeMeeting {
		t.Errorf("expected ModeMeeting to win over dev app, got %v", ev.Effective())
	}
	if !ev.Meeting {
		t.Error("expected Meeting=true")
	}
}

func TestMonitor_PinnedOverridesDetected(t *testing.T) {
	poller := &mock.Poller{States: []contextmonitor.RawState{
		{ActiveAppID: "code"},
	}}
	pinned := types.ModeWriter
	cfg := testConfig()
	cfg.Pinned = &pinned
	m := contextmonitor.New(poller, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	ev := drainOne(t, m.Events())
	if ev.Detected != types.ModeDev {
		t.Errorf("expected Detected=ModeDev regardless of pin, got %v", ev.Detected)
	}
	if ev.Effective() != types.ModeWriter {
		t.Errorf("expected pinned Effective=ModeWriter, got %v", ev.Effective())
	}
}

func TestMonitor_PollErrorIsSkippedNotFatal(t *testing.T) {
	poller := &mock.Poller{Err: errors.New("boom")}
	m := contextmonitor.New(poller, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case ev := <-m.Events():
		t.Fatalf("expected no events while poller errors, got %+v", ev)
	case <-ctx.Done():
	}

	if err := <-done; err == nil {
		t.Error("expected Run to return ctx error after cancellation")
	}
}
