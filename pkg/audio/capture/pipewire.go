package capture

import (
	"context"
	"fmt"

	"github.com/nullshift/vocalops/pkg/audio"
)

// PipewireBackend captures audio via pw-record, PipeWire's recording CLI.
// It mirrors PulseBackend's shape: SourceMicrophone and SourceSystem each
// map to a configurable PipeWire target node, SourceCombined is not
// supported here (see OpusBackend).
type PipewireBackend struct {
	// MicTarget is the pw-record --target argument for SourceMicrophone.
	// Empty uses PipeWire's default capture node.
	MicTarget string

	// SystemTarget is the pw-record --target argument for SourceSystem,
	// normally a sink's monitor node.
	SystemTarget string

	run runner
}

// NewPipewireBackend returns a PipewireBackend that shells out to the real
// pw-record binary.
func NewPipewireBackend(micTarget, systemTarget string) *PipewireBackend {
	return &PipewireBackend{MicTarget: micTarget, SystemTarget: systemTarget, run: execRunner}
}

// Open implements audio.Backend.
func (b *PipewireBackend) Open(ctx context.Context, source audio.Source) (audio.RawStream, error) {
	target, err := b.targetFor(source)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--format=s16",
		"--rate=" + fmt.Sprint(nativeSampleRate),
		"--channels=1",
	}
	if target != "" {
		args = append(args, "--target="+target)
	}
	args = append(args, "-") // write raw PCM to stdout

	stdout, wait, err := b.run(ctx, "pw-record", args...)
	if err != nil {
		return nil, fmt.Errorf("pipewire: open %s: %w", source, err)
	}
	return newProcessStream(stdout, wait), nil
}

func (b *PipewireBackend) targetFor(source audio.Source) (string, error) {
	switch source {
	case audio.SourceMicrophone:
		return b.MicTarget, nil
	case audio.SourceSystem:
		return b.SystemTarget, nil
	default:
		return "", fmt.Errorf("pipewire: unsupported source %s (use OpusBackend for combined capture)", source)
	}
}
