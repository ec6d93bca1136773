// Package encoder turns one message chunk into a ggwave WAV segment.
//
// Two interchangeable strategies exist: shelling out to the ggwave-to-file
// binary, or calling a registered in-process encode function. The strategy is
// chosen once at startup via Select and passed through the pipeline; there is
// no process-wide mode flag.
package encoder

import (
	"context"
	"fmt"
	"time"

	"github.com/example/go-ggwave-message/internal/protocol"
)

// Strategy names reported by Encoder.Name and accepted by Select.
const (
	StrategyAuto    = "auto"
	StrategyBinary  = "binary"
	StrategyLibrary = "library"
)

// Options holds the encode parameters shared by every chunk of a run.
type Options struct {
	Protocol   int
	Volume     int
	SampleRate int
	Timeout    time.Duration
}

// Validate checks the option ranges before any work begins.
func (o Options) Validate() error {
	if _, err := protocol.ByID(o.Protocol); err != nil {
		return err
	}
	if o.Volume < 0 || o.Volume > 100 {
		return fmt.Errorf("invalid volume %d (valid range 0-100)", o.Volume)
	}
	if o.SampleRate < 1 {
		return fmt.Errorf("invalid sample rate %d", o.SampleRate)
	}

	return nil
}

// Encoder writes the WAV rendition of a single chunk to outPath.
// A failed encode leaves no usable file at outPath.
type Encoder interface {
	EncodeChunk(ctx context.Context, chunk, outPath string) error
	Name() string
}

// EncodeFunc is the in-process encoding entry point: it returns the float32
// waveform for text, or an error. Bindings register one at startup.
type EncodeFunc func(text string, protocolID, volume int) ([]float32, error)

var libraryFn EncodeFunc

// RegisterLibrary installs the in-process encode function. Call once during
// initialization, before Select.
func RegisterLibrary(fn EncodeFunc) { libraryFn = fn }

// LibraryAvailable reports whether an in-process encode function is registered.
func LibraryAvailable() bool { return libraryFn != nil }

// Select resolves the encode strategy once at startup. StrategyAuto prefers
// the registered library function and falls back to the binary search path.
// binaryPath, when non-empty, overrides the fixed search path.
func Select(strategy, binaryPath string, opts Options) (Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyAuto, "":
		if LibraryAvailable() {
			return NewLibraryEncoder(libraryFn, opts)
		}
		return NewBinaryEncoder(binaryPath, opts)
	case StrategyLibrary:
		if !LibraryAvailable() {
			return nil, fmt.Errorf("library strategy requested but no encode function is registered")
		}
		return NewLibraryEncoder(libraryFn, opts)
	case StrategyBinary:
		return NewBinaryEncoder(binaryPath, opts)
	default:
		return nil, fmt.Errorf("invalid encoder strategy %q (expected %s|%s|%s)",
			strategy, StrategyAuto, StrategyBinary, StrategyLibrary)
	}
}
