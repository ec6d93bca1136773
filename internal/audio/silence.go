package audio

import (
	"fmt"
	"os"
)

// Silence returns a mono 16-bit WAV containing exactly
// round(seconds*sampleRate) zero-valued samples.
func Silence(seconds float64, sampleRate int) ([]byte, error) {
	if seconds < 0 {
		return nil, fmt.Errorf("negative silence duration: %g", seconds)
	}

	frames := int(seconds * float64(sampleRate))

	return EncodeWAV(make([]float32, frames), sampleRate)
}

// WriteSilenceFile writes a silence WAV of the given duration to path.
func WriteSilenceFile(path string, seconds float64, sampleRate int) error {
	data, err := Silence(seconds, sampleRate)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
