package capture

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nullshift/vocalops/pkg/audio"
)

func TestPipewireBackend_BuildsTargetArgsPerSource(t *testing.T) {
	var gotArgs []string
	b := &PipewireBackend{
		MicTarget:    "mic-node",
		SystemTarget: "sink-node.monitor",
		run: func(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
			gotArgs = args
			return io.NopCloser(strings.NewReader("")), func() error { return nil }, nil
		},
	}

	if _, err := b.Open(context.Background(), audio.SourceMicrophone); err != nil {
		t.Fatalf("Open(mic): %v", err)
	}
	if !containsArg(gotArgs, "--target=mic-node") {
		t.Errorf("expected mic target arg, got %v", gotArgs)
	}

	if _, err := b.Open(context.Background(), audio.SourceSystem); err != nil {
		t.Fatalf("Open(system): %v", err)
	}
	if !containsArg(gotArgs, "--target=sink-node.monitor") {
		t.Errorf("expected system target arg, got %v", gotArgs)
	}
}

func TestPipewireBackend_RejectsCombinedSource(t *testing.T) {
	b := &PipewireBackend{run: func(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
		return nil, nil, nil
	}}
	_, err := b.Open(context.Background(), audio.SourceCombined)
	if err == nil {
		t.Fatal("expected error for combined source, got nil")
	}
}
