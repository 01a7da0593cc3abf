package audio

import (
	"math"
	"testing"
)

func TestDCBlocker_RemovesOffset(t *testing.T) {
	d := newDCBlocker(InternalSampleRate)
	samples := make([]float32, 4000)
	for i := range samples {
		samples[i] = 0.5 + float32(0.01*math.Sin(float64(i)*0.1))
	}
	d.Process(samples)

	var sum float64
	// Skip the filter's settling transient at the start.
	tail := samples[1000:]
	for _, s := range tail {
		sum += float64(s)
	}
	mean := sum / float64(len(tail))
	if math.Abs(mean) > 0.05 {
		t.Errorf("expected near-zero mean after DC blocking, got %v", mean)
	}
}

func TestAGC_BoostsQuietSignal(t *testing.T) {
	a := newAGC()
	samples := make([]float32, 800)
	for i := range samples {
		// Amplitude 0.01 is about -43 dBFS RMS: quiet, but above the
		// -50 dBFS noise floor below which the gain is held.
		samples[i] = float32(0.01 * math.Sin(float64(i)*0.3))
	}
	for range 50 {
		cp := make([]float32, len(samples))
		copy(cp, samples)
		a.Process(cp)
	}
	if a.gain <= 1.0 {
		t.Errorf("expected gain to increase above unity for a quiet signal, got %v", a.gain)
	}
	if a.gain > agcMaxGain {
		t.Errorf("gain exceeded max bound: %v", a.gain)
	}
}

func TestAGC_RespectsNoiseFloor(t *testing.T) {
	a := newAGC()
	silence := make([]float32, 800)
	for range 20 {
		a.Process(silence)
	}
	if a.gain > agcMaxGain || a.gain < agcMinGain {
		t.Errorf("gain out of bounds for silence: %v", a.gain)
	}
}

func TestAGC_SoftClipsLoudSignal(t *testing.T) {
	a := newAGC()
	a.gain = agcMaxGain
	samples := []float32{0.9, -0.9, 1.0, -1.0}
	a.Process(samples)
	for _, s := range samples {
		if s > 1.0 || s < -1.0 {
			t.Errorf("expected soft-clipped sample within [-1,1], got %v", s)
		}
	}
}

func TestRMSDBFS_Silence(t *testing.T) {
	silence := make([]float32, 800)
	if got := rmsDBFS(silence); got != -120 {
		t.Errorf("expected floor -120 for silence, got %v", got)
	}
}

func TestRMSDBFS_FullScale(t *testing.T) {
	full := make([]float32, 800)
	for i := range full {
		if i%2 == 0 {
			full[i] = 1
		} else {
			full[i] = -1
		}
	}
	got := rmsDBFS(full)
	if math.Abs(got-0) > 0.5 {
		t.Errorf("expected ~0 dBFS for full-scale signal, got %v", got)
	}
}
