package audio_test

import (
	"math"
	"testing"

	"github.com/nullshift/vocalops/pkg/audio"
)

func TestDownmix_Mono(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := audio.Downmix(in, 1)
	if len(out) != 3 {
		t.Fatalf("expected passthrough for mono, got len %d", len(out))
	}
}

func TestDownmix_Stereo(t *testing.T) {
	// L=0.2,R=0.4 then L=-0.2,R=-0.6
	in := []float32{0.2, 0.4, -0.2, -0.6}
	out := audio.Downmix(in, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(out))
	}
	if math.Abs(float64(out[0])-0.3) > 1e-6 {
		t.Errorf("sample 0: got %v, want 0.3", out[0])
	}
	if math.Abs(float64(out[1])+0.4) > 1e-6 {
		t.Errorf("sample 1: got %v, want -0.4", out[1])
	}
}

func TestSincResample_SameRate(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := audio.SincResample(in, 16000, 16000)
	if len(out) != len(in) {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
}

func TestSincResample_Upsample(t *testing.T) {
	in := make([]float32, 160) // 10ms at 16kHz
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * float64(i) / 16))
	}
	out := audio.SincResample(in, 16000, 48000)
	wantLen := len(in) * 3
	if len(out) != wantLen {
		t.Fatalf("expected %d samples, got %d", wantLen, len(out))
	}
}

func TestSincResample_Downsample(t *testing.T) {
	in := make([]float32, 480) // 10ms at 48kHz
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * float64(i) / 48))
	}
	out := audio.SincResample(in, 48000, 16000)
	wantLen := len(in) / 3
	if len(out) != wantLen {
		t.Fatalf("expected %d samples, got %d", wantLen, len(out))
	}
}

func TestSincResample_ZeroRate(t *testing.T) {
	in := []float32{0.1, 0.2}
	if out := audio.SincResample(in, 0, 16000); len(out) != len(in) {
		t.Errorf("expected unchanged output for zero srcRate, got len %d", len(out))
	}
}

func TestLinearResample_Upsample(t *testing.T) {
	in := []float32{0.0, 1.0}
	out := audio.LinearResample(in, 16000, 48000)
	if len(out) != 6 {
		t.Fatalf("expected 6 samples, got %d", len(out))
	}
	if out[0] != 0.0 {
		t.Errorf("first sample: got %v, want 0.0", out[0])
	}
}

func TestLinearResample_SameRate(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := audio.LinearResample(in, 16000, 16000)
	if len(out) != len(in) {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
}
