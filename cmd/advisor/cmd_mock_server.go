package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"advisor/internal/mockapi"

	"github.com/spf13/cobra"
)

var (
	mockAddr   string
	mockPrefix string
)

// mockServerCmd serves the REST contract from memory
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve an in-memory backend with sample rules, systems and tags",
	Long: `Starts an HTTP server implementing the backend endpoints with seeded data.
Point the dashboard at it with:

  advisor mock-server --addr :8000 &
  advisor --base-url http://localhost:8000/api/insights/v1`,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":8000", "Listen address")
	mockServerCmd.Flags().StringVar(&mockPrefix, "prefix", "/api/insights/v1", "Path prefix of the API")
}

func runMockServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sugar := logger.Sugar()
	srv := mockapi.New(mockapi.Default(), mockPrefix, sugar)
	httpServer := &http.Server{
		Addr:              mockAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("mock backend listening", "addr", mockAddr, "prefix", mockPrefix)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock server shutdown: %w", err)
	}
	sugar.Info("mock backend stopped")
	return nil
}
