package capture

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/nullshift/vocalops/pkg/audio"
)

// fakeReadCloser feeds a fixed byte slice then reports EOF.
type fakeReadCloser struct {
	r      io.Reader
	closed bool
}

func (f *fakeReadCloser) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *fakeReadCloser) Close() error {
	f.closed = true
	return nil
}

func samplesToPCM(samples []int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

func TestProcessStream_DecodesPCMIntoRawFrames(t *testing.T) {
	samples := make([]int16, pcmChunkSamples*2) // two full chunks
	for i := range samples {
		samples[i] = 1000
	}
	pcm := samplesToPCM(samples)

	frc := &fakeReadCloser{r: newByteReader(pcm)}
	waited := false
	s := newProcessStream(frc, func() error { waited = true; return nil })

	var frames []audio.RawFrame
	for f := range s.Frames() {
		frames = append(frames, f)
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	for _, f := range frames {
		if len(f.Data) != pcmChunkSamples {
			t.Errorf("frame has %d samples, want %d", len(f.Data), pcmChunkSamples)
		}
		if f.SampleRate != nativeSampleRate || f.Channels != 1 {
			t.Errorf("unexpected frame shape: %+v", f)
		}
	}
	if s.Err() != nil {
		t.Errorf("expected no error after clean EOF, got %v", s.Err())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !frc.closed {
		t.Error("expected stdout to be closed")
	}
	if !waited {
		t.Error("expected wait() to be called")
	}
}

func TestProcessStream_ReadErrorSurfacesOnErr(t *testing.T) {
	wantErr := errors.New("boom")
	frc := &erroringReadCloser{err: wantErr}
	s := newProcessStream(frc, nil)

	for range s.Frames() {
	}
	if !errors.Is(s.Err(), wantErr) {
		t.Errorf("expected %v, got %v", wantErr, s.Err())
	}
}

type erroringReadCloser struct{ err error }

func (e *erroringReadCloser) Read(p []byte) (int, error) { return 0, e.err }
func (e *erroringReadCloser) Close() error               { return nil }

// newByteReader avoids importing bytes just for this helper's one use.
func newByteReader(b []byte) io.Reader {
	return &sliceReader{data: b}
}

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
