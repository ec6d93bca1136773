package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/example/go-ggwave-message/internal/config"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/example/go-ggwave-message/internal/message"
)

// PipelineEncoder adapts the message pipeline to the HTTP handler. Requests
// may override protocol, volume, sample rate and pause settings; everything
// else comes from the server configuration.
type PipelineEncoder struct {
	cfg config.Config
	log *slog.Logger
}

func NewPipelineEncoder(cfg config.Config, logger *slog.Logger) *PipelineEncoder {
	if logger == nil {
		logger = slog.Default()
	}

	return &PipelineEncoder{cfg: cfg, log: logger}
}

func (p *PipelineEncoder) EncodeMessage(ctx context.Context, req EncodeRequest) ([]byte, int, error) {
	opts := encoder.Options{
		Protocol:   p.cfg.Encode.Protocol,
		Volume:     p.cfg.Encode.Volume,
		SampleRate: p.cfg.Encode.SampleRate,
		Timeout:    time.Duration(p.cfg.Encode.TimeoutSeconds) * time.Second,
	}
	if req.Protocol != nil {
		opts.Protocol = *req.Protocol
	}
	if req.Volume != nil {
		opts.Volume = *req.Volume
	}
	if req.SampleRate != nil {
		opts.SampleRate = *req.SampleRate
	}

	enc, err := encoder.Select(p.cfg.Encoder.Strategy, p.cfg.Encoder.BinaryPath, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("select encoder: %w", err)
	}

	pauses := p.cfg.Output.Pauses
	if req.Pauses != nil {
		pauses = *req.Pauses
	}
	pauseDuration := p.cfg.Output.PauseDuration
	if req.PauseDuration != nil {
		pauseDuration = *req.PauseDuration
	}

	pipe := message.New(enc, nil, p.log, message.Options{
		ChunkBytes:    p.cfg.Encode.ChunkBytes,
		SampleRate:    opts.SampleRate,
		Pauses:        pauses,
		PauseDuration: pauseDuration,
	})

	workDir, err := os.MkdirTemp("", "ggmsg-serve-")
	if err != nil {
		return nil, 0, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			p.log.Warn("could not remove work dir", "dir", workDir, "error", rmErr)
		}
	}()

	res, err := pipe.Process(ctx, req.Text, filepath.Join(workDir, "message.wav"))
	if err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, 0, err
	}

	return data, res.Chunks, nil
}
