// Package video renders the combined WAV into an MP4 by looping a still
// image for the duration of the audio track. All transcoding is delegated to
// an installed ffmpeg; this package only builds arguments and manages the
// temporary still image.
package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultURLText is the overlay shown on generated stills when the caller
// provides neither an image nor a URL.
const DefaultURLText = "https://waver.ggerganov.com/"

// ErrFFmpegNotFound is returned when no ffmpeg executable is available.
var ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

// RenderOptions selects the still image for the video track.
type RenderOptions struct {
	// ImagePath, when set, is used as the still verbatim.
	ImagePath string
	// URLText is drawn centered on the generated blank canvas. Ignored when
	// ImagePath is set. Empty means no overlay.
	URLText string
}

// Renderer drives ffmpeg to mux a still image with a WAV track into an
// H.264/AAC MP4.
type Renderer struct {
	ffmpeg string
	log    *slog.Logger
}

// NewRenderer locates ffmpeg and verifies it runs. The missing-transcoder
// case is surfaced as ErrFFmpegNotFound so callers can downgrade to
// WAV-only output instead of failing the pipeline.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	if err := exec.Command(path, "-version").Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg -version failed: %v", ErrFFmpegNotFound, err)
	}

	return &Renderer{ffmpeg: path, log: logger}, nil
}

// Render produces videoPath from wavPath and the configured still image.
// Temporary working files are removed best-effort; removal problems are
// logged as warnings only.
func (r *Renderer) Render(ctx context.Context, wavPath, videoPath string, opts RenderOptions) error {
	still := opts.ImagePath

	if still == "" {
		workDir, err := os.MkdirTemp("", "ggmsg-video-")
		if err != nil {
			return fmt.Errorf("create video work dir: %w", err)
		}
		defer func() {
			if rmErr := os.RemoveAll(workDir); rmErr != nil {
				r.log.Warn("could not clean up video work dir", "dir", workDir, "error", rmErr)
			}
		}()

		still = filepath.Join(workDir, "blank.png")
		if err := r.run(ctx, stillArgs(still, opts.URLText)); err != nil {
			return fmt.Errorf("generate still image: %w", err)
		}
	}

	if err := r.run(ctx, muxArgs(still, wavPath, videoPath)); err != nil {
		return fmt.Errorf("mux video: %w", err)
	}

	return nil
}

func (r *Renderer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %v: %w (output: %s)", args, err, tail(out, 400))
	}

	return nil
}

// stillArgs builds the ffmpeg invocation for a black 1280x720 canvas with an
// optional centered URL box.
func stillArgs(outPath, urlText string) []string {
	args := []string{
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:d=1",
	}
	if urlText != "" {
		args = append(args, "-vf", drawTextFilter(urlText))
	}

	return append(args, "-frames:v", "1", "-y", outPath)
}

// drawTextFilter centers urlText in a translucent box so it stays readable
// over the black canvas.
func drawTextFilter(urlText string) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=36:box=1:"+
			"boxcolor=black@0.5:boxborderw=10:x=(w-text_w)/2:y=(h-text_h)/2",
		urlText,
	)
}

// muxArgs builds the ffmpeg invocation that loops the still for the audio
// duration and encodes H.264 video with AAC audio.
func muxArgs(stillPath, wavPath, videoPath string) []string {
	return []string{
		"-loop", "1",
		"-i", stillPath,
		"-i", wavPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-y", videoPath,
	}
}

func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}

	return b[len(b)-n:]
}
