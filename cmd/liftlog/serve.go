// ABOUTME: CLI command for starting the HTTP API.
// ABOUTME: Serves parse, submit, and query routes until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/liftlog/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

ROUTES:

  POST /parse-workout   extract a workout from a chat message
  POST /workouts        save a list of exercises
  GET  /workouts        summary, date, exercise, or progress queries
  GET  /healthz         liveness
  GET  /metrics         prometheus metrics`,
	Annotations: map[string]string{completionKey: completionOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddress()
		}

		handler := api.NewHandler(service, logger)
		server := api.NewServer(api.ServerConfig{
			Address:      addr,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.GetCompletionTimeout() + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		}, handler.Routes())

		shutdownCh := make(chan os.Signal, 1)
		signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(shutdownCh)

		errCh := make(chan error, 1)
		go func() {
			logger.Info("liftlog listening",
				zap.String("address", addr),
				zap.String("backend", cfg.GetBackend()))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-shutdownCh:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
