package audio

import "math"

// Downmix averages interleaved multi-channel samples down to mono by
// channel averaging. If channels <= 1, data is returned unchanged.
func Downmix(data []float32, channels int) []float32 {
	if channels <= 1 {
		return data
	}
	frames := len(data) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		base := i * channels
		for c := range channels {
			sum += data[base+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// sincKernelHalfWidth is the number of zero-crossings of sinc included on
// each side of the windowed-sinc resampling kernel. Larger values trade CPU
// for stopband rejection; 8 is a common choice for speech-quality resampling.
const sincKernelHalfWidth = 8

// SincResample resamples mono float32 PCM from srcRate to dstRate using a
// band-limited windowed-sinc kernel (Blackman window), per the spec's
// requirement that sinc resampling be the default path. If srcRate ==
// dstRate, samples is returned unchanged.
func SincResample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(float64(len(samples)) * ratio)
	if outLen <= 0 {
		return nil
	}

	// When downsampling, widen the kernel (lower its effective cutoff) to
	// keep it band-limited to the new Nyquist frequency and avoid aliasing.
	cutoff := 1.0
	if ratio < 1.0 {
		cutoff = ratio
	}

	out := make([]float32, outLen)
	srcStep := float64(srcRate) / float64(dstRate)

	for i := range outLen {
		center := float64(i) * srcStep
		lo := int(math.Floor(center)) - sincKernelHalfWidth
		hi := int(math.Floor(center)) + sincKernelHalfWidth

		var acc, weightSum float64
		for j := lo; j <= hi; j++ {
			if j < 0 || j >= len(samples) {
				continue
			}
			x := center - float64(j)
			w := sincWindowed(x, cutoff)
			acc += w * float64(samples[j])
			weightSum += w
		}
		if weightSum != 0 {
			acc /= weightSum
		}
		out[i] = float32(acc)
	}
	return out
}

// sincWindowed evaluates a Blackman-windowed sinc kernel scaled by cutoff
// (the normalized cutoff frequency, 1.0 == Nyquist) at offset x samples from
// the kernel center.
func sincWindowed(x, cutoff float64) float64 {
	x *= cutoff
	var s float64
	if x == 0 {
		s = 1
	} else {
		px := math.Pi * x
		s = math.Sin(px) / px
	}

	// Blackman window over +/- sincKernelHalfWidth, in the unscaled domain.
	n := x / cutoff
	half := float64(sincKernelHalfWidth)
	if n < -half || n > half {
		return 0
	}
	t := (n + half) / (2 * half)
	window := 0.42 - 0.5*math.Cos(2*math.Pi*t) + 0.08*math.Cos(4*math.Pi*t)

	return s * window * cutoff
}

// LinearResample resamples mono float32 PCM from srcRate to dstRate using
// linear interpolation. Measurably less accurate than [SincResample]; the
// spec requires this path be opt-in (see Capture's LinearResample option),
// never the default. If srcRate == dstRate, samples is returned unchanged.
func LinearResample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) * float64(dstRate) / float64(srcRate))
	if outLen <= 0 {
		return nil
	}

	out := make([]float32, outLen)
	for i := range outLen {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		s0 := samples[idx]
		var s1 float32
		if idx+1 < len(samples) {
			s1 = samples[idx+1]
		} else {
			s1 = s0
		}
		out[i] = s0 + float32(frac)*(s1-s0)
	}
	return out
}
