package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/go-ggwave-message/internal/doctor"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local encode environment",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "strategy: %s\n", cfg.Encoder.Strategy)

			dcfg := doctor.Config{
				GGWavePath: func() (string, error) {
					return encoder.FindBinary(cfg.Encoder.BinaryPath)
				},
				SkipGGWave:     cfg.Encoder.Strategy == encoder.StrategyLibrary,
				FFmpegVersion:  probeFFmpegVersion,
				FFmpegOptional: !cfg.Output.Video,
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// probeFFmpegVersion runs `ffmpeg -version` and returns the first output line.
func probeFFmpegVersion() (string, error) {
	out, err := exec.CommandContext(context.Background(), "ffmpeg", "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg -version failed: %w", err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")

	return strings.TrimSpace(line), nil
}
