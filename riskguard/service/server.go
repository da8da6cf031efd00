package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/zap"

	"github.com/bridgelabs-io/riskguard/metrics"
	"github.com/bridgelabs-io/riskguard/riskguard/config"
)

const rpcShutdownTimeout = 10 * time.Second

// Server is the main daemon construct for the risk guard. It handles
// spinning up the RPC server, the database, the metrics endpoint and
// the ledger connection.
type Server struct {
	started int32

	cfg    *config.Config
	logger *zap.Logger

	app *RiskGuardApp
	db  kvdb.Backend

	quit chan struct{}
}

// NewRiskGuardServer creates a new server with the given config.
func NewRiskGuardServer(cfg *config.Config, logger *zap.Logger, app *RiskGuardApp, db kvdb.Backend) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		app:    app,
		db:     db,
		quit:   make(chan struct{}, 1),
	}
}

// RunUntilShutdown runs the main risk guard server loop until a signal
// is received to shut down the process.
func (s *Server) RunUntilShutdown(ctx context.Context) error {
	if atomic.AddInt32(&s.started, 1) != 1 {
		return nil
	}

	defer func() {
		s.logger.Info("Shutdown complete")
	}()

	// Start the metrics server.
	promAddr, err := s.cfg.Metrics.Address()
	if err != nil {
		return fmt.Errorf("failed to get prometheus address: %w", err)
	}
	metricsServer := metrics.Start(promAddr, s.logger)

	defer func() {
		s.logger.Info("Closing database...")
		if err := s.db.Close(); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to close database: %v", err))
		} else {
			s.logger.Info("Database closed")
		}
		metricsServer.Stop(ctx)
		s.logger.Info("Metrics server stopped")
	}()

	if err := s.app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the risk guard app: %w", err)
	}
	defer func() {
		if err := s.app.Stop(); err != nil {
			s.logger.Error("failed to stop the risk guard app", zap.Error(err))
		}
	}()

	rpcServer, err := newRPCServer(s.app)
	if err != nil {
		return fmt.Errorf("failed to create RPC server: %w", err)
	}
	if err := rpcServer.Start(); err != nil {
		return fmt.Errorf("failed to start RPC server: %w", err)
	}
	defer func() {
		_ = rpcServer.Stop()
	}()

	listenAddr := s.cfg.RPCListener
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}

	httpServer := &http.Server{
		Handler:           rpcServer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.logger.Info("RPC server listening", zap.String("address", lis.Addr().String()))
		if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("RPC server exited", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rpcShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Risk Guard Daemon is fully active!")

	// Wait for shutdown signal from either a graceful server stop or from
	// the interrupt handler.
	<-ctx.Done()

	return nil
}
