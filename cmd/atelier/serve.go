package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmcdole/atelier/internal/adapter"
	"github.com/mmcdole/atelier/internal/devserver"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local museum API for development",
		Long: `Serve an in-memory museum API with a sample gallery, accounts and
per-user favorites. Data is lost when the server stops.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig(flags.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}
			// The server logs to the terminal
			cfg.Logging.File = "stderr"
			logger, err := adapter.SetupLogger(&cfg.Logging)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			if addr == "" {
				addr = cfg.DevServer.Addr
			}
			srv := devserver.NewServer(devserver.Config{
				Addr:           addr,
				AllowedOrigins: cfg.DevServer.AllowedOrigins,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default devserver.addr, :3000)")
	return cmd
}
