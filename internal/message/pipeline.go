// Package message orchestrates the send pipeline: split the message into
// byte-bounded chunks, encode each chunk to a WAV segment, interleave
// optional silence pauses, combine the segments, and optionally render an
// MP4. Execution is strictly sequential with no retries; the first chunk
// failure aborts the run.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-ggwave-message/internal/audio"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/example/go-ggwave-message/internal/text"
	"github.com/example/go-ggwave-message/internal/video"
)

// ErrEmptyMessage is returned when the normalized message contains nothing
// to transmit.
var ErrEmptyMessage = errors.New("message is empty")

// Renderer is the slice of the video renderer the pipeline needs. A nil
// Renderer means video output is unavailable and runs downgrade to WAV.
type Renderer interface {
	Render(ctx context.Context, wavPath, videoPath string, opts video.RenderOptions) error
}

// Options configures one pipeline run.
type Options struct {
	ChunkBytes    int
	SampleRate    int
	Pauses        bool
	PauseDuration float64
	Video         bool
	ImagePath     string
	URLText       string

	// Optional polish applied to the combined waveform before delivery.
	Normalize bool
	FadeInMS  float64
	FadeOutMS float64
}

// Result describes the artifact a successful run produced.
type Result struct {
	Path   string // final artifact location
	Kind   string // "wav" or "mp4"
	Chunks int
}

// Pipeline wires the chunk encoder and the optional video renderer.
type Pipeline struct {
	enc      encoder.Encoder
	renderer Renderer
	log      *slog.Logger
	opts     Options
}

func New(enc encoder.Encoder, renderer Renderer, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ChunkBytes <= 0 {
		opts.ChunkBytes = text.DefaultChunkBytes
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}

	return &Pipeline{enc: enc, renderer: renderer, log: logger, opts: opts}
}

// Process runs the full pipeline for message and writes the artifact under
// outPath (the extension is replaced with .mp4 for video output). All
// intermediate chunk and silence files live in a per-run temp directory that
// is removed best-effort on every exit path.
func (p *Pipeline) Process(ctx context.Context, message, outPath string) (Result, error) {
	chunks := text.Split(message, p.opts.ChunkBytes)
	if len(chunks) == 0 {
		return Result{}, ErrEmptyMessage
	}
	p.log.Info("split message", "chunks", len(chunks), "chunk_bytes", p.opts.ChunkBytes)

	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	wavOut := outPath
	if p.opts.Video {
		wavOut = base + "_temp.wav"
	}

	tempDir, err := os.MkdirTemp("", "ggmsg-")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			p.log.Warn("could not remove temp dir", "dir", tempDir, "error", rmErr)
		}
	}()

	chunkFiles := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		chunkFile := filepath.Join(tempDir, fmt.Sprintf("chunk_%d.wav", i))
		p.log.Info("encoding chunk", "index", i+1, "total", len(chunks), "bytes", len(chunk), "strategy", p.enc.Name())

		if err := p.enc.EncodeChunk(ctx, chunk, chunkFile); err != nil {
			return Result{}, fmt.Errorf("encode chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkFiles = append(chunkFiles, chunkFile)
	}

	segments := chunkFiles
	if p.opts.Pauses && len(chunkFiles) > 1 {
		silenceFile := filepath.Join(tempDir, "silence.wav")
		if err := audio.WriteSilenceFile(silenceFile, p.opts.PauseDuration, p.opts.SampleRate); err != nil {
			return Result{}, fmt.Errorf("create silence segment: %w", err)
		}

		segments = interleave(chunkFiles, silenceFile)
	}

	if err := audio.CombineFiles(segments, wavOut); err != nil {
		return Result{}, fmt.Errorf("combine segments: %w", err)
	}

	if err := p.polish(wavOut); err != nil {
		return Result{}, err
	}
	p.log.Info("combined WAV written", "path", wavOut)

	if !p.opts.Video {
		return Result{Path: wavOut, Kind: "wav", Chunks: len(chunks)}, nil
	}

	return p.renderVideo(ctx, wavOut, base+".mp4", outPath, len(chunks))
}

// renderVideo attempts the MP4 and downgrades to the WAV artifact on any
// renderer failure; the downgrade is a warning, never an error.
func (p *Pipeline) renderVideo(ctx context.Context, wavOut, videoOut, requestedOut string, chunks int) (Result, error) {
	renderErr := errors.New("video renderer unavailable")
	if p.renderer != nil {
		renderErr = p.renderer.Render(ctx, wavOut, videoOut, video.RenderOptions{
			ImagePath: p.opts.ImagePath,
			URLText:   p.opts.URLText,
		})
	}

	if renderErr == nil {
		if wavOut != requestedOut {
			if err := os.Remove(wavOut); err != nil {
				p.log.Warn("could not remove intermediate WAV", "path", wavOut, "error", err)
			}
		}

		return Result{Path: videoOut, Kind: "mp4", Chunks: chunks}, nil
	}

	p.log.Warn("video rendering failed, WAV preserved", "error", renderErr)
	if wavOut != requestedOut {
		if err := os.Rename(wavOut, requestedOut); err != nil {
			return Result{}, fmt.Errorf("preserve WAV after video failure: %w", err)
		}
		wavOut = requestedOut
	}

	return Result{Path: wavOut, Kind: "wav", Chunks: chunks}, nil
}

// polish applies the optional DSP pass to the combined file in place.
func (p *Pipeline) polish(wavPath string) error {
	if !p.opts.Normalize && p.opts.FadeInMS <= 0 && p.opts.FadeOutMS <= 0 {
		return nil
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return fmt.Errorf("read combined WAV: %w", err)
	}
	samples, rate, err := audio.DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("decode combined WAV: %w", err)
	}

	if p.opts.Normalize {
		samples = audio.PeakNormalize(samples)
	}
	if p.opts.FadeInMS > 0 {
		samples = audio.FadeIn(samples, rate, p.opts.FadeInMS)
	}
	if p.opts.FadeOutMS > 0 {
		samples = audio.FadeOut(samples, rate, p.opts.FadeOutMS)
	}

	out, err := audio.EncodeWAV(samples, rate)
	if err != nil {
		return fmt.Errorf("encode polished WAV: %w", err)
	}

	return os.WriteFile(wavPath, out, 0o644)
}

// interleave places silence between consecutive chunks, never after the
// final one.
func interleave(chunkFiles []string, silenceFile string) []string {
	out := make([]string, 0, len(chunkFiles)*2-1)
	for i, f := range chunkFiles {
		out = append(out, f)
		if i < len(chunkFiles)-1 {
			out = append(out, silenceFile)
		}
	}

	return out
}
