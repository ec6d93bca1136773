// Package doctor provides environment preflight checks for ggmsg.
package doctor

import (
	"fmt"
	"io"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// GGWavePath resolves the ggwave-to-file binary location.
	GGWavePath VersionFunc
	// SkipGGWave skips the binary check (library strategy mode).
	SkipGGWave bool
	// FFmpegVersion returns the output of `ffmpeg -version`.
	FFmpegVersion VersionFunc
	// FFmpegOptional downgrades a missing ffmpeg to a note instead of a
	// failure; WAV output works without it.
	FFmpegOptional bool
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ggwave-to-file binary -------------------------------------------
	if cfg.SkipGGWave {
		fmt.Fprintf(w, "%s ggwave-to-file binary: skipped (library strategy)\n", PassMark)
	} else {
		path, err := cfg.GGWavePath()
		if err != nil {
			res.fail(fmt.Sprintf("ggwave-to-file binary: %v", err))
			fmt.Fprintf(w, "%s ggwave-to-file binary: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s ggwave-to-file binary: %s\n", PassMark, path)
		}
	}

	// ---- ffmpeg -----------------------------------------------------------
	ffVer, err := cfg.FFmpegVersion()
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s ffmpeg: %s\n", PassMark, ffVer)
	case cfg.FFmpegOptional:
		fmt.Fprintf(w, "%s ffmpeg: not found (video output unavailable, WAV still works)\n", PassMark)
	default:
		res.fail(fmt.Sprintf("ffmpeg: %v", err))
		fmt.Fprintf(w, "%s ffmpeg: not found (%v)\n", FailMark, err)
	}

	return res
}
