package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-ggwave-message/internal/audio"
	"github.com/example/go-ggwave-message/internal/testutil"
)

func TestSend_EndToEnd_Integration(t *testing.T) {
	testutil.RequireGGWave(t)

	outPath := filepath.Join(t.TempDir(), "out.wav")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"send", "integration hello", "-o", outPath, "-q"})

	if err := root.Execute(); err != nil {
		t.Fatalf("send: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	testutil.AssertValidWAV(t, data, audio.DefaultSampleRate)
}
