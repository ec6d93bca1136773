package encoder

import (
	"context"
	"fmt"
	"os"

	"github.com/example/go-ggwave-message/internal/audio"
)

// LibraryEncoder encodes chunks through an in-process encode function.
// The call runs under a watchdog goroutine so a hung binding is abandoned
// when the deadline passes instead of blocking the pipeline.
type LibraryEncoder struct {
	fn   EncodeFunc
	opts Options
}

func NewLibraryEncoder(fn EncodeFunc, opts Options) (*LibraryEncoder, error) {
	if fn == nil {
		return nil, fmt.Errorf("nil encode function")
	}

	return &LibraryEncoder{fn: fn, opts: opts}, nil
}

func (e *LibraryEncoder) Name() string { return StrategyLibrary }

type encodeResult struct {
	samples []float32
	err     error
}

// EncodeChunk runs the encode function with a deadline, converts the
// returned waveform to 16-bit PCM and writes it as a mono WAV at the
// configured sample rate.
func (e *LibraryEncoder) EncodeChunk(ctx context.Context, chunk, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	done := make(chan encodeResult, 1)
	go func() {
		samples, err := e.fn(chunk, e.opts.Protocol, e.opts.Volume)
		done <- encodeResult{samples: samples, err: err}
	}()

	var res encodeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return fmt.Errorf("encoding timed out after %s: %w", e.opts.Timeout, ctx.Err())
	}
	if res.err != nil {
		return fmt.Errorf("library encode: %w", res.err)
	}
	if len(res.samples) == 0 {
		return fmt.Errorf("library encode produced no samples")
	}

	wavData, err := audio.EncodeWAV(res.samples, e.opts.SampleRate)
	if err != nil {
		return fmt.Errorf("encode chunk WAV: %w", err)
	}

	if err := os.WriteFile(outPath, wavData, 0o644); err != nil {
		return fmt.Errorf("write chunk WAV: %w", err)
	}

	return nil
}
