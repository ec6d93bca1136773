package audio

// PeakNormalize scales samples so the peak amplitude reaches 1.0.
// Silent input is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return samples
	}

	out := make([]float32, len(samples))
	scale := 1.0 / peak
	for i, s := range samples {
		out[i] = s * scale
	}

	return out
}

// FadeIn applies a linear fade-in ramp over the given duration in milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeFrames(sampleRate, ms, len(samples))
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	for i := 0; i < n; i++ {
		out[i] *= float32(i) / float32(n)
	}

	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in milliseconds.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeFrames(sampleRate, ms, len(samples))
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	start := len(out) - n
	for i := start; i < len(out); i++ {
		out[i] *= float32(len(out)-1-i) / float32(n)
	}

	return out
}

func fadeFrames(sampleRate int, ms float64, total int) int {
	if ms <= 0 || sampleRate <= 0 || total == 0 {
		return 0
	}

	n := int(ms / 1000 * float64(sampleRate))
	if n > total {
		n = total
	}

	return n
}
