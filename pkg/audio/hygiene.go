package audio

import "math"

const (
	dcHighpassCutoffHz = 20.0

	agcTargetDBFS     = -20.0
	agcNoiseFloorDBFS = -50.0
	agcMinGain        = 0.1
	agcMaxGain        = 10.0
	agcSmoothing      = 0.1
)

// dcBlocker removes DC offset with a one-pole high-pass filter. Not safe for
// concurrent use; one instance per stream.
type dcBlocker struct {
	alpha  float64
	prevIn float64
	prevOut float64
}

// newDCBlocker builds a one-pole high-pass with the given cutoff at
// sampleRate.
func newDCBlocker(sampleRate int) *dcBlocker {
	rc := 1.0 / (2 * math.Pi * dcHighpassCutoffHz)
	dt := 1.0 / float64(sampleRate)
	return &dcBlocker{alpha: rc / (rc + dt)}
}

// Process applies the filter in place and returns the same slice.
func (d *dcBlocker) Process(samples []float32) []float32 {
	for i, x := range samples {
		in := float64(x)
		out := d.alpha * (d.prevOut + in - d.prevIn)
		d.prevIn = in
		d.prevOut = out
		samples[i] = float32(out)
	}
	return samples
}

// agc is an automatic gain controller targeting agcTargetDBFS with a noise
// floor below which the gain is held rather than adjusted, smoothed
// frame-to-frame. Not safe for concurrent use.
type agc struct {
	gain float64
}

func newAGC() *agc {
	return &agc{gain: 1.0}
}

// Process applies gain in place, soft-clips the result with tanh, and
// returns the same slice.
func (a *agc) Process(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}

	rms := rmsDBFS(samples)

	desired := a.gain
	if rms > agcNoiseFloorDBFS {
		// Gain needed to bring the current RMS level to target, in linear
		// scale: desired = 10^((target-rms)/20). rms is measured on the
		// input before gain, so the result is not scaled by a.gain.
		deltaDB := agcTargetDBFS - rms
		desired = math.Pow(10, deltaDB/20)
	}
	if desired < agcMinGain {
		desired = agcMinGain
	}
	if desired > agcMaxGain {
		desired = agcMaxGain
	}

	// Exponential attack/decay smoothing toward the desired gain.
	a.gain += agcSmoothing * (desired - a.gain)

	for i, x := range samples {
		samples[i] = float32(math.Tanh(float64(x) * a.gain))
	}
	return samples
}

// rmsDBFS computes the RMS level of samples in dBFS, where full scale is
// +/-1.0. Silence (all-zero input) reports a very low floor rather than
// -Inf.
func rmsDBFS(samples []float32) float64 {
	var sumSq float64
	for _, x := range samples {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return -120
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms <= 0 {
		return -120
	}
	return 20 * math.Log10(rms)
}
