package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/internal/logging"
	rosterhttp "github.com/aretw0/roster/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP view API",
	Long: `Serves the roster state as JSON, accepts view actions and workflow requests,
and streams state diffs over Server-Sent Events on /events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		opts := []rosterhttp.Option{rosterhttp.WithLogger(a.logger)}
		if a.cfg.HTTP.Metrics {
			opts = append(opts, rosterhttp.WithMetrics(a.Registry))
		}
		srv := rosterhttp.NewServer(a.Engine, opts...)
		defer srv.Close()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
			if err := a.Engine.FetchUsers(ctx); err != nil {
				a.logger.Warn("initial fetch failed", "err", err)
			}
		}

		return serveHTTP(ctx, fmt.Sprintf(":%d", port), srv.Handler(), a.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().Bool("fetch", false, "Fetch users before accepting requests")
}

// serveHTTP runs handler on addr until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Long-lived SSE requests end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down", "address", addr, "reason", cli.StopReason(ctx))

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}
