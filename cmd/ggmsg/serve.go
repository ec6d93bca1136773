package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-ggwave-message/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ggmsg HTTP encode server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			enc := server.NewPipelineEncoder(cfg, slog.Default())

			srv := server.New(cfg.Server.ListenAddr, enc,
				server.WithMaxTextBytes(cfg.Server.MaxTextBytes),
				server.WithWorkers(cfg.Server.Workers),
				server.WithRequestTimeout(time.Duration(cfg.Encode.TimeoutSeconds)*time.Second),
				server.WithLogger(slog.Default()),
			).WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
