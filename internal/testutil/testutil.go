// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireGGWave(t)
//	    testutil.RequireFFmpeg(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"github.com/example/go-ggwave-message/internal/encoder"
)

// RequireGGWave skips the test if no ggwave-to-file binary is found in the
// fixed search path or the path given by the GGMSG_GGWAVE_BIN environment
// variable.
func RequireGGWave(tb testing.TB) {
	tb.Helper()

	explicit := os.Getenv("GGMSG_GGWAVE_BIN")

	_, err := encoder.FindBinary(explicit)
	if err != nil {
		tb.Skipf("ggwave-to-file binary not available (%v); set GGMSG_GGWAVE_BIN to override", err)
	}
}

// RequireFFmpeg skips the test if ffmpeg is not in PATH.
func RequireFFmpeg(tb testing.TB) {
	tb.Helper()

	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		tb.Skip("ffmpeg not available in PATH")
	}
}
