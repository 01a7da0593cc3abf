package vad

// samplesToPCM16 converts float32 PCM in [-1,1] to little-endian int16 PCM
// bytes, the wire format expected by [vadprovider.SessionHandle.ProcessFrame]
// backends (Silero, WebRTC VAD).
func samplesToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s := int16(f * 32767)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
