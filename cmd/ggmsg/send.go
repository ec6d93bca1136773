package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/example/go-ggwave-message/internal/config"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/example/go-ggwave-message/internal/message"
	"github.com/example/go-ggwave-message/internal/video"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var inputFile string
	var out string
	var protocolID int
	var volume int
	var sampleRate int
	var noPauses bool
	var pauseDuration float64
	var quiet bool
	var videoOn bool
	var noVideo bool
	var imagePath string
	var urlText string
	var timeoutSec int
	var normalize bool
	var fadeInMS float64
	var fadeOutMS float64

	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Encode a message into a ggwave WAV (or MP4) file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			applySendOverrides(&cfg, cmd, sendOverrides{
				Protocol:      protocolID,
				Volume:        volume,
				SampleRate:    sampleRate,
				NoPauses:      noPauses,
				PauseDuration: pauseDuration,
				Video:         videoOn,
				NoVideo:       noVideo,
				ImagePath:     imagePath,
				URLText:       urlText,
				TimeoutSec:    timeoutSec,
			})
			if err := cfg.Validate(); err != nil {
				return err
			}

			messageText, err := readSendInput(args, inputFile, os.Stdin)
			if err != nil {
				return err
			}

			logger := slog.Default()
			if quiet {
				logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			}

			enc, err := encoder.Select(cfg.Encoder.Strategy, cfg.Encoder.BinaryPath, encoder.Options{
				Protocol:   cfg.Encode.Protocol,
				Volume:     cfg.Encode.Volume,
				SampleRate: cfg.Encode.SampleRate,
				Timeout:    time.Duration(cfg.Encode.TimeoutSeconds) * time.Second,
			})
			if err != nil {
				return mapSendError(err)
			}

			var renderer message.Renderer
			if cfg.Output.Video {
				r, err := video.NewRenderer(logger)
				if err != nil {
					// Missing ffmpeg downgrades the run to WAV output.
					logger.Warn("ffmpeg unavailable, falling back to WAV output", "error", err)
				} else {
					renderer = r
				}
			}

			pipe := message.New(enc, renderer, logger, message.Options{
				ChunkBytes:    cfg.Encode.ChunkBytes,
				SampleRate:    cfg.Encode.SampleRate,
				Pauses:        cfg.Output.Pauses,
				PauseDuration: cfg.Output.PauseDuration,
				Video:         cfg.Output.Video,
				ImagePath:     cfg.Output.ImagePath,
				URLText:       cfg.Output.URLText,
				Normalize:     normalize,
				FadeInMS:      fadeInMS,
				FadeOutMS:     fadeOutMS,
			})

			result, err := pipe.Process(cmd.Context(), messageText, out)
			if err != nil {
				return mapSendError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d chunks)\n", result.Path, result.Kind, result.Chunks)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the message from a file instead of the argument or stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "output.wav", "Output file path")
	cmd.Flags().IntVarP(&protocolID, "protocol", "p", defaults.Encode.Protocol, "ggwave protocol id (see 'ggmsg protocols')")
	cmd.Flags().IntVarP(&volume, "volume", "v", defaults.Encode.Volume, "Encoder volume (0-100)")
	cmd.Flags().IntVarP(&sampleRate, "sample-rate", "s", defaults.Encode.SampleRate, "Output sample rate in Hz")
	cmd.Flags().BoolVar(&noPauses, "no-pauses", false, "Do not insert silence between chunks")
	cmd.Flags().Float64VarP(&pauseDuration, "pause-duration", "d", defaults.Output.PauseDuration, "Pause duration between chunks in seconds")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-chunk progress output")
	cmd.Flags().BoolVar(&videoOn, "video", false, "Render an MP4 with the audio muxed over a still frame")
	cmd.Flags().BoolVar(&noVideo, "no-video", false, "Force WAV output even when video is enabled in config")
	cmd.Flags().StringVar(&imagePath, "image", "", "Still image for the video (a generated frame is used if empty)")
	cmd.Flags().StringVar(&urlText, "url", video.DefaultURLText, "URL drawn on the generated video still")
	cmd.Flags().IntVarP(&timeoutSec, "timeout", "t", defaults.Encode.TimeoutSeconds, "Per-chunk encode timeout in seconds")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Peak-normalize the combined audio")
	cmd.Flags().Float64Var(&fadeInMS, "fade-in-ms", 0, "Apply linear fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&fadeOutMS, "fade-out-ms", 0, "Apply linear fade-out duration in milliseconds")

	return cmd
}

type sendOverrides struct {
	Protocol      int
	Volume        int
	SampleRate    int
	NoPauses      bool
	PauseDuration float64
	Video         bool
	NoVideo       bool
	ImagePath     string
	URLText       string
	TimeoutSec    int
}

// applySendOverrides layers explicitly set send flags over the loaded
// configuration. Flags left at their defaults do not touch config or
// environment values.
func applySendOverrides(cfg *config.Config, cmd *cobra.Command, o sendOverrides) {
	flags := cmd.Flags()

	if flags.Changed("protocol") {
		cfg.Encode.Protocol = o.Protocol
	}
	if flags.Changed("volume") {
		cfg.Encode.Volume = o.Volume
	}
	if flags.Changed("sample-rate") {
		cfg.Encode.SampleRate = o.SampleRate
	}
	if flags.Changed("timeout") {
		cfg.Encode.TimeoutSeconds = o.TimeoutSec
	}
	if flags.Changed("no-pauses") && o.NoPauses {
		cfg.Output.Pauses = false
	}
	if flags.Changed("pause-duration") {
		cfg.Output.PauseDuration = o.PauseDuration
	}
	if flags.Changed("video") {
		cfg.Output.Video = o.Video
	}
	if flags.Changed("no-video") && o.NoVideo {
		cfg.Output.Video = false
	}
	if flags.Changed("image") {
		cfg.Output.ImagePath = o.ImagePath
	}
	if flags.Changed("url") {
		cfg.Output.URLText = o.URLText
	}
}

// readSendInput resolves the message text: positional argument first, then
// --input file, then stdin.
func readSendInput(args []string, inputFile string, stdin io.Reader) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	if inputFile != "" {
		b, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		if strings.TrimSpace(string(b)) == "" {
			return "", fmt.Errorf("input file %s is empty", inputFile)
		}
		return string(b), nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := string(b)
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("provide a message argument, --input file, or pipe text on stdin")
	}
	return input, nil
}

func mapSendError(err error) error {
	if errors.Is(err, encoder.ErrBinaryNotFound) || errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("send failed: ggwave-to-file not found; build ggwave or set --encoder-binary-path or GGMSG_GGWAVE_BIN: %w", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("send failed: ggwave-to-file returned non-zero exit; check stderr details above: %w", err)
	}

	return err
}
