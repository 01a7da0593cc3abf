package capture

import (
	"context"
	"sync"

	"github.com/nullshift/vocalops/pkg/audio"
)

// MockBackend is a test/dev [audio.Backend] that opens successfully but
// never emits a frame, instead of talking to any real capture device. It
// backs the "mock" audio provider name, used for local development and
// integration tests that need a live Capture pipeline without a microphone
// — callers feed synthetic AudioFrame values through the pipeline some
// other way (e.g. directly into pkg/audio/bus) while this backend just
// keeps the stream open and quiet.
type MockBackend struct {
	mu     sync.Mutex
	opened []audio.Source
}

// NewMockBackend returns a MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Open implements audio.Backend, returning a stream that emits no frames and
// stays open until ctx is done or the returned stream is closed.
func (b *MockBackend) Open(ctx context.Context, source audio.Source) (audio.RawStream, error) {
	b.mu.Lock()
	b.opened = append(b.opened, source)
	b.mu.Unlock()

	return newMockStream(ctx), nil
}

// Opened returns every source passed to Open, in call order.
func (b *MockBackend) Opened() []audio.Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]audio.Source, len(b.opened))
	copy(out, b.opened)
	return out
}

type mockStream struct {
	frames chan audio.RawFrame
	cancel context.CancelFunc
}

func newMockStream(ctx context.Context) *mockStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &mockStream{
		frames: make(chan audio.RawFrame),
		cancel: cancel,
	}
	go func() {
		defer close(s.frames)
		<-ctx.Done()
	}()
	return s
}

func (s *mockStream) Frames() <-chan audio.RawFrame { return s.frames }
func (s *mockStream) Err() error                    { return nil }
func (s *mockStream) Close() error {
	s.cancel()
	return nil
}
