package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/example/go-ggwave-message/internal/audio"
	"github.com/example/go-ggwave-message/internal/config"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/example/go-ggwave-message/internal/testutil"
)

func TestPipelineEncoder_EncodeMessage(t *testing.T) {
	encoder.RegisterLibrary(func(string, int, int) ([]float32, error) {
		return make([]float32, 200), nil
	})
	t.Cleanup(func() { encoder.RegisterLibrary(nil) })

	cfg := config.DefaultConfig()
	cfg.Encoder.Strategy = encoder.StrategyLibrary
	cfg.Encode.SampleRate = 8000
	cfg.Output.Pauses = false

	pe := NewPipelineEncoder(cfg, quietLogger())

	wav, chunks, err := pe.EncodeMessage(context.Background(), EncodeRequest{Text: "hello over http"})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if chunks != 1 {
		t.Errorf("chunks = %d, want 1", chunks)
	}

	samples, rate, err := audio.DecodeWAV(wav)
	if err != nil {
		t.Fatalf("decoding response WAV: %v", err)
	}
	if rate != 8000 {
		t.Errorf("sample rate = %d, want 8000", rate)
	}
	if len(samples) != 200 {
		t.Errorf("sample count = %d, want 200 (single chunk, no pauses)", len(samples))
	}
}

func TestPipelineEncoder_RequestOverridesApply(t *testing.T) {
	encoder.RegisterLibrary(func(string, int, int) ([]float32, error) {
		return make([]float32, 100), nil
	})
	t.Cleanup(func() { encoder.RegisterLibrary(nil) })

	cfg := config.DefaultConfig()
	cfg.Encoder.Strategy = encoder.StrategyLibrary
	cfg.Encode.ChunkBytes = 5
	cfg.Output.Pauses = false

	pe := NewPipelineEncoder(cfg, quietLogger())

	rate := 8000
	pauses := true
	pauseDuration := 0.5

	// Two chunks of "helloworld" with a half-second pause between them.
	wav, chunks, err := pe.EncodeMessage(context.Background(), EncodeRequest{
		Text:          "helloworld",
		SampleRate:    &rate,
		Pauses:        &pauses,
		PauseDuration: &pauseDuration,
	})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if chunks != 2 {
		t.Errorf("chunks = %d, want 2", chunks)
	}

	samples, gotRate, err := audio.DecodeWAV(wav)
	if err != nil {
		t.Fatalf("decoding response WAV: %v", err)
	}
	if gotRate != 8000 {
		t.Errorf("sample rate = %d, want overridden 8000", gotRate)
	}
	if want := 2*100 + 4000; len(samples) != want {
		t.Errorf("sample count = %d, want %d (two chunks plus one pause)", len(samples), want)
	}
}

func TestPipelineEncoder_InvalidProtocolFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Encode.Protocol = 99

	pe := NewPipelineEncoder(cfg, quietLogger())

	if _, _, err := pe.EncodeMessage(context.Background(), EncodeRequest{Text: "x"}); err == nil {
		t.Error("expected error for invalid configured protocol")
	}
}

func TestHandleEncode_CombinedOutputIsValidWAV(t *testing.T) {
	// Each chunk contributes 800 samples; at 8000 Hz that is 0.1s of audio.
	encoder.RegisterLibrary(func(string, int, int) ([]float32, error) {
		return make([]float32, 800), nil
	})
	t.Cleanup(func() { encoder.RegisterLibrary(nil) })

	cfg := config.DefaultConfig()
	cfg.Encoder.Strategy = encoder.StrategyLibrary
	cfg.Encode.ChunkBytes = 5
	cfg.Encode.SampleRate = 8000

	h := newTestHandler(NewPipelineEncoder(cfg, quietLogger()))

	// Two chunks separated by a half-second pause: 0.1 + 0.5 + 0.1 seconds.
	rec := postEncode(t, h, `{"text":"helloworld","sample_rate":8000,"pauses":true,"pause_duration":0.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.Bytes()
	testutil.AssertValidWAV(t, body, 8000)
	testutil.AssertWAVDurationApprox(t, body, 8000, 0.69, 0.71)
}
