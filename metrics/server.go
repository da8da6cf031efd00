package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	metricsShutdownTimeout = 5 * time.Second
)

// Server exposes the Prometheus metrics endpoint.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// Start launches the metrics server on the given address.
func Start(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("address", addr))
		if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server exited", zap.Error(err))
		}
	}()

	return server
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(fmt.Sprintf("failed to shut down metrics server: %v", err))
	}
}
