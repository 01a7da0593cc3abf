package capture

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/nullshift/vocalops/pkg/audio"
)

// pcmChunkSamples is the number of mono samples read per subprocess chunk
// (20ms at 48kHz — the native rate every supported CLI tool is asked for).
const pcmChunkSamples = 960

// nativeSampleRate is the rate requested from every external capture tool.
// audio.Capture resamples down to audio.InternalSampleRate.
const nativeSampleRate = 48000

// runner abstracts process execution for testability; exec.CommandContext
// is used in production, a fake in tests — the same seam internal/contextmonitor/hyprland
// uses for shelling out to a CLI tool.
type runner func(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error)

func execRunner(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("%s: start: %w", name, err)
	}
	return stdout, cmd.Wait, nil
}

// processStream reads interleaved mono s16le PCM from a subprocess's stdout
// and republishes it as audio.RawFrame values at nativeSampleRate.
type processStream struct {
	frames chan audio.RawFrame
	stdout io.ReadCloser
	wait   func() error

	closeOnce sync.Once
	stopCh    chan struct{}
	err       error
	errMu     sync.Mutex

	epoch time.Time
}

func newProcessStream(stdout io.ReadCloser, wait func() error) *processStream {
	s := &processStream{
		frames: make(chan audio.RawFrame, 8),
		stdout: stdout,
		wait:   wait,
		stopCh: make(chan struct{}),
		epoch:  time.Now(),
	}
	go s.run()
	return s
}

func (s *processStream) run() {
	defer close(s.frames)

	buf := make([]byte, pcmChunkSamples*2)
	for {
		if _, err := io.ReadFull(s.stdout, buf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				s.setErr(fmt.Errorf("capture: read pcm: %w", err))
			}
			return
		}

		samples := make([]float32, pcmChunkSamples)
		for i := 0; i < pcmChunkSamples; i++ {
			u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
			samples[i] = float32(int16(u)) / 32768.0
		}

		frame := audio.RawFrame{
			Data:       samples,
			SampleRate: nativeSampleRate,
			Channels:   1,
			CaptureMs:  time.Since(s.epoch).Milliseconds(),
		}
		select {
		case s.frames <- frame:
		case <-s.stopCh:
			return
		}
	}
}

func (s *processStream) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

func (s *processStream) Frames() <-chan audio.RawFrame { return s.frames }

func (s *processStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *processStream) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		close(s.stopCh)
		closeErr = s.stdout.Close()
		if s.wait != nil {
			_ = s.wait()
		}
	})
	return closeErr
}
