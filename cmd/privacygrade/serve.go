package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/monitor"
	"github.com/nao1215/privacygrade/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local grading API",
		Long: `Serve runs a local HTTP API that a browser extension reports page events to.

Grades are kept per tab. Badge updates are pushed to WebSocket subscribers
on /api/ws as the evidence changes.

Endpoints:
  POST   /api/events                 report one event or an array of events
  GET    /api/tabs/{tab}/score       current score
  GET    /api/tabs/{tab}/report      detailed report
  POST   /api/tabs/{tab}/fresh       report merged with the posted page HTML
  DELETE /api/tabs/{tab}             forget a closed tab
  GET    /api/ws?tab={tab}           badge updates
  GET    /healthz                    liveness

Examples:
  # Listen on the default loopback address
  privacygrade serve

  # Listen elsewhere and repaint on every change
  privacygrade serve --listen 127.0.0.1:9000 --repaint-interval 0s`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().Duration("repaint-interval", config.DefaultRepaintInterval,
		"Minimum time between two badge updates of one tab")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum request body size in bytes")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runServe(ctx, cmd, cfg, logger)
}

// buildServeConfig creates a Config from the file and the serve flags.
// Flags override the file only when they were given.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("repaint-interval") {
		if cfg.RepaintInterval, err = cmd.Flags().GetDuration("repaint-interval"); err != nil {
			return nil, err
		}
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAPIServer wires the hub, monitor and server together.
func newAPIServer(cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	c, err := newComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := server.NewHub(logger)
	m := c.newMonitor(monitor.WithPainter(hub))
	return server.New(m, hub,
		server.WithAddr(cfg.ListenAddress),
		server.WithCollector(c.collector),
		server.WithMaxBodySize(cfg.MaxBodySize),
		server.WithLogger(logger),
	), nil
}

// runServe serves until ctx is cancelled.
func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	srv, err := newAPIServer(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s (Ctrl+C to stop)\n", cfg.ListenAddress)
	return srv.Serve(ctx)
}
