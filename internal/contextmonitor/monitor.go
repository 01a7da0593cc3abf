// Package contextmonitor implements the Context Monitor (spec §4.7): OS
// polling for the frontmost application and microphone-holding processes,
// effective-mode derivation, and change-only event emission.
package contextmonitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/nullshift/vocalops/pkg/types"
)

// Poll-rate bounds per spec §4.7 (configurable 0.5-2 Hz, default 1 Hz).
const (
	MinPollHz     = 0.5
	MaxPollHz     = 2.0
	DefaultPollHz = 1.0
)

// RawState is one poll's raw observation, before mode derivation.
type RawState struct {
	// ActiveAppID is the frontmost application's stable identifier (bundle
	// ID, process name, or window class, depending on platform).
	ActiveAppID string

	// ActiveAppName is the frontmost application's human-readable name.
	ActiveAppName string

	// MicHolders is the set of stable application identifiers currently
	// holding the microphone.
	MicHolders []string

	// MicActive is true iff audio is actively flowing through the
	// microphone (as opposed to merely being opened/reserved).
	MicActive bool
}

// Poller observes the OS. Implementations are platform-specific; see
// internal/contextmonitor/hyprland for a Linux/Hyprland-backed Poller.
type Poller interface {
	Poll(ctx context.Context) (RawState, error)
}

// Config configures a [Monitor].
type Config struct {
	// PollHz is the polling frequency, clamped to [MinPollHz, MaxPollHz].
	// Zero or a negative value uses DefaultPollHz.
	PollHz float64

	// MeetingApps, DevApps, WriterApps are static sets of ActiveAppID
	// values recognized for each mode, evaluated in that priority order
	// (Meeting > Dev > Writer > Global).
	MeetingApps map[string]struct{}
	DevApps     map[string]struct{}
	WriterApps  map[string]struct{}

	// Pinned, if non-nil, overrides the derived mode unconditionally.
	Pinned *types.Mode

	Logger *slog.Logger
}

func (c Config) pollInterval() time.Duration {
	hz := c.PollHz
	if hz <= 0 {
		hz = DefaultPollHz
	}
	if hz < MinPollHz {
		hz = MinPollHz
	}
	if hz > MaxPollHz {
		hz = MaxPollHz
	}
	return time.Duration(float64(time.Second) / hz)
}

// Monitor polls a [Poller] on a timer, derives the effective mode on each
// tick, and emits a [types.Context] event only when the effective mode,
// active app, or meeting flag changes since the last poll.
type Monitor struct {
	poller Poller
	cfg    Config
	log    *slog.Logger

	events chan types.Context
	last   *types.Context
}

// New constructs a Monitor over poller with cfg.
func New(poller Poller, cfg Config) *Monitor {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		poller: poller,
		cfg:    cfg,
		log:    log,
		events: make(chan types.Context, 8),
	}
}

// Events returns the channel on which ContextChanged snapshots are
// delivered, in poll order.
func (m *Monitor) Events() <-chan types.Context {
	return m.events
}

// Run polls until ctx is cancelled. Poll errors are logged and skipped;
// they do not stop the monitor.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.events)

	ticker := time.NewTicker(m.cfg.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	raw, err := m.poller.Poll(ctx)
	if err != nil {
		m.log.Warn("contextmonitor: poll failed", "err", err)
		return
	}

	snapshot := types.Context{
		Detected:      deriveMode(raw, m.cfg),
		Pinned:        m.cfg.Pinned,
		ActiveAppID:   raw.ActiveAppID,
		ActiveAppName: raw.ActiveAppName,
		Meeting:       isMeeting(raw, m.cfg),
		Timestamp:     time.Now(),
	}

	if m.last != nil && !changed(*m.last, snapshot) {
		return
	}
	m.last = &snapshot

	select {
	case m.events <- snapshot:
	default:
		m.log.Warn("contextmonitor: events channel full, dropping ContextChanged")
	}
}

// changed reports whether effective mode, active app, or meeting flag
// differ between two context snapshots — the only conditions that warrant
// emitting ContextChanged per spec §4.7.
func changed(prev, next types.Context) bool {
	return prev.Effective() != next.Effective() ||
		prev.ActiveAppID != next.ActiveAppID ||
		prev.Meeting != next.Meeting
}

func isMeeting(raw RawState, cfg Config) bool {
	if !raw.MicActive {
		return false
	}
	for _, holder := range raw.MicHolders {
		if _, ok := cfg.MeetingApps[holder]; ok {
			return true
		}
	}
	return false
}

// deriveMode applies the ordered rules from spec §4.7. The caller's Pinned
// override, if set, is applied separately via types.Context.Effective —
// deriveMode always returns the purely-detected mode.
func deriveMode(raw RawState, cfg Config) types.Mode {
	if isMeeting(raw, cfg) {
		return types.ModeMeeting
	}
	if _, ok := cfg.DevApps[raw.ActiveAppID]; ok {
		return types.ModeDev
	}
	if _, ok := cfg.WriterApps[raw.ActiveAppID]; ok {
		return types.ModeWriter
	}
	return types.ModeGlobal
}
