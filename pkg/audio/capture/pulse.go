package capture

import (
	"context"
	"fmt"

	"github.com/nullshift/vocalops/pkg/audio"
)

// PulseBackend captures audio via PulseAudio's parecord CLI, the same
// "shell out to the system's own tool" pattern internal/contextmonitor/hyprland
// uses for hyprctl. It supports SourceMicrophone (the default input device)
// and SourceSystem (a monitor source, typically "<sink>.monitor").
//
// PulseBackend does not support SourceCombined; use OpusBackend for that.
type PulseBackend struct {
	// MicDevice is the parecord --device argument for SourceMicrophone. Empty
	// uses PulseAudio's configured default source.
	MicDevice string

	// SystemDevice is the parecord --device argument for SourceSystem,
	// normally a sink monitor such as "@DEFAULT_SINK@.monitor".
	SystemDevice string

	run runner
}

// NewPulseBackend returns a PulseBackend that shells out to the real
// parecord binary.
func NewPulseBackend(micDevice, systemDevice string) *PulseBackend {
	return &PulseBackend{MicDevice: micDevice, SystemDevice: systemDevice, run: execRunner}
}

// Open implements audio.Backend.
func (b *PulseBackend) Open(ctx context.Context, source audio.Source) (audio.RawStream, error) {
	device, err := b.deviceFor(source)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--raw",
		"--format=s16le",
		"--rate=" + fmt.Sprint(nativeSampleRate),
		"--channels=1",
	}
	if device != "" {
		args = append(args, "--device="+device)
	}

	stdout, wait, err := b.run(ctx, "parecord", args...)
	if err != nil {
		return nil, fmt.Errorf("pulse: open %s: %w", source, err)
	}
	return newProcessStream(stdout, wait), nil
}

func (b *PulseBackend) deviceFor(source audio.Source) (string, error) {
	switch source {
	case audio.SourceMicrophone:
		return b.MicDevice, nil
	case audio.SourceSystem:
		return b.SystemDevice, nil
	default:
		return "", fmt.Errorf("pulse: unsupported source %s (use OpusBackend for combined capture)", source)
	}
}
