// Package heartbeatserver wires the relay's components into a single
// HTTP server: WebSocket upgrade requests go to the connection manager,
// everything else to the static asset handler.
package heartbeatserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/heartbeatserver/config"
	"github.com/dana280/heartbeat-app/internal/platform/static"
	"github.com/dana280/heartbeat-app/internal/presence"
	"github.com/dana280/heartbeat-app/internal/realtime"
	"github.com/dana280/heartbeat-app/internal/wire"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

// Wrapper owns the process-wide state (presence registry) and the HTTP
// server serving both the upgrade path and the static path on one port.
type Wrapper struct {
	server   *http.Server
	registry *presence.Registry
	tokens   relay.TokenStore
	logger   zerolog.Logger
}

// New creates and wires up the relay service. The registry is
// constructed here, once, and handed by reference into every
// connection's handler; external dependencies arrive injected.
func New(cfg *config.AppConfig, deps *relay.ServiceDependencies, logger zerolog.Logger) *Wrapper {
	registry := presence.NewRegistry(logger)

	connManager := realtime.NewConnectionManager(
		registry,
		deps.TokenStore,
		deps.PushNotifier,
		logger,
	)
	fileServer := static.NewFileServer(cfg.DocRoot, logger)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wire.IsUpgradeRequest(r) {
			connManager.ServeHTTP(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})

	return &Wrapper{
		server: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: handler,
		},
		registry: registry,
		tokens:   deps.TokenStore,
		logger:   logger,
	}
}

// Handler exposes the combined handler for in-process tests.
func (w *Wrapper) Handler() http.Handler { return w.server.Handler }

// Start runs the HTTP server until it fails or is shut down.
func (w *Wrapper) Start(_ context.Context) error {
	w.logger.Info().Str("addr", w.server.Addr).Msg("HeartBeat server starting...")
	if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("heartbeat server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the token store.
func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info().Msg("Shutting down HeartBeat server...")
	var finalErr error

	if err := w.server.Shutdown(ctx); err != nil {
		w.logger.Error().Err(err).Msg("HTTP server shutdown failed.")
		finalErr = err
	}
	if err := w.tokens.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Token store close failed.")
		if finalErr == nil {
			finalErr = err
		}
	}

	w.logger.Info().Msg("HeartBeat server shut down.")
	return finalErr
}
