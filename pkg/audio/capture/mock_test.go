package capture

import (
	"context"
	"testing"
	"time"

	"github.com/nullshift/vocalops/pkg/audio"
)

func TestMockBackend_RecordsOpenedSources(t *testing.T) {
	b := NewMockBackend()
	ctx := context.Background()

	s1, err := b.Open(ctx, audio.SourceMicrophone)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s1.Close()
	s2, err := b.Open(ctx, audio.SourceSystem)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s2.Close()

	got := b.Opened()
	if len(got) != 2 || got[0] != audio.SourceMicrophone || got[1] != audio.SourceSystem {
		t.Errorf("unexpected opened sources: %v", got)
	}
}

func TestMockBackend_StreamNeverEmitsAndClosesOnClose(t *testing.T) {
	b := NewMockBackend()
	s, err := b.Open(context.Background(), audio.SourceMicrophone)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	select {
	case f, ok := <-s.Frames():
		t.Fatalf("expected no frame, got %+v (ok=%v)", f, ok)
	case <-time.After(20 * time.Millisecond):
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, ok := <-s.Frames():
		if ok {
			t.Fatal("expected frames channel to be closed after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("frames channel did not close after Close")
	}
}
