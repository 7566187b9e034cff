package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dativo-io/piiredact/internal/config"
	"github.com/dativo-io/piiredact/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the redaction API over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /health     liveness
  POST /v1/redact  redact one JSON object
  GET  /v1/rules   the detection rule table

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

// newHTTPServer builds the http.Server for cfg.
func newHTTPServer(cfg *config.Config) *http.Server {
	opts := []server.Option{server.WithVersion(resolvedVersion())}
	if cfg.RateLimitRPM > 0 || cfg.ClientRPM > 0 {
		opts = append(opts, server.WithRateLimiter(server.NewRateLimiter(cfg.RateLimitRPM, cfg.ClientRPM)))
	}
	srv := server.NewServer(opts...)

	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr = serveAddr
	}

	httpServer := newHTTPServer(cfg)
	log.Info().
		Str("addr", httpServer.Addr).
		Int("rate_limit_rpm", cfg.RateLimitRPM).
		Int("rate_limit_client_rpm", cfg.ClientRPM).
		Msg("piiredact_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
