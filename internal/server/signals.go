package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalHandler manages graceful shutdown of the HTTP server
type SignalHandler struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	signals         chan os.Signal
}

// NewSignalHandler creates a new signal handler listening for SIGINT and SIGTERM
func NewSignalHandler(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) *SignalHandler {
	sh := &SignalHandler{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
		signals:         make(chan os.Signal, 1),
	}
	signal.Notify(sh.signals, syscall.SIGINT, syscall.SIGTERM)
	return sh
}

// WaitForShutdown blocks until a signal arrives or serveErr yields, then
// shuts the server down within the timeout
func (sh *SignalHandler) WaitForShutdown(serveErr <-chan error) error {
	defer signal.Stop(sh.signals)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sh.signals:
		sh.logger.Info("Received signal, initiating graceful shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), sh.shutdownTimeout)
	defer cancel()

	if err := sh.server.Shutdown(ctx); err != nil {
		sh.logger.Error("Server forced to shutdown", "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	sh.logger.Info("Server gracefully shut down")
	return nil
}

// HandleSignals starts the server and blocks until it stops
func HandleSignals(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	handler := NewSignalHandler(server, shutdownTimeout, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	return handler.WaitForShutdown(serveErr)
}
