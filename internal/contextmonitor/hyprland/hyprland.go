// Package hyprland implements [contextmonitor.Poller] by shelling out to
// hyprctl, the Hyprland Wayland compositor's control CLI, for the
// frontmost window's window class. It does not observe the microphone;
// callers that need meeting detection should compose this Poller's output
// with a separate audio-session poller.
package hyprland

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nullshift/vocalops/internal/contextmonitor"
)

// activeWindow mirrors the fields hyprctl -j activewindow reports that we
// care about: Class is the stable per-application identifier (e.g.
// "code", "firefox"), Title is the human-readable window title.
type activeWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
}

// runner abstracts process execution for testability; exec.CommandContext
// is used in production, a fake in tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Poller polls hyprctl for the active window. It implements
// [contextmonitor.Poller] but always reports MicActive=false and an empty
// MicHolders set — mic-session enumeration is outside hyprctl's contract.
type Poller struct {
	run runner
}

// New returns a Poller that shells out to the real hyprctl binary.
func New() *Poller {
	return &Poller{run: execRunner}
}

// Poll queries hyprctl's active-window JSON and maps it to a
// [contextmonitor.RawState]. An empty desktop (no focused window, e.g. the
// compositor idling on an empty workspace) is not an error: it is reported
// as a RawState with an empty ActiveAppID.
func (p *Poller) Poll(ctx context.Context) (contextmonitor.RawState, error) {
	out, err := p.run(ctx, "hyprctl", "-j", "activewindow")
	if err != nil {
		return contextmonitor.RawState{}, err
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" || trimmed == "null" {
		return contextmonitor.RawState{}, nil
	}

	var win activeWindow
	if err := json.Unmarshal(out, &win); err != nil {
		return contextmonitor.RawState{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}

	return contextmonitor.RawState{
		ActiveAppID:   strings.TrimSpace(win.Class),
		ActiveAppName: strings.TrimSpace(win.Title),
	}, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("%s %v failed: %w", name, args, err)
		}
		return nil, fmt.Errorf("%s %v failed: %w (%s)", name, args, err, trimmed)
	}
	return out, nil
}

var _ contextmonitor.Poller = (*Poller)(nil)
