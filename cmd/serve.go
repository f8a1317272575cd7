package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/homelibrary/bookworm/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extraction HTTP service",
		Long: `Starts the extraction service.

Endpoints:
  POST /extract           base64 images (JSON) or image files (multipart)
  POST /extract-metadata  already recognized page text
  GET  /healthcheck       liveness
  GET  /health            model circuit breaker state
  GET  /metrics           Prometheus metrics`,
		Example: `  # Start server on default port 5000
  bookworm serve

  # Start server on custom port with OpenAI
  bookworm serve --port 3000 --provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, guarded, err := buildService(cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(svc, guarded, cfg.MaxBodyBytes)

			addr := fmt.Sprintf(":%d", cfg.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookworm service available", "addr", addr, "provider", cfg.Provider, "model", cfg.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default 5000)")

	return cmd
}
