package cmd

import (
	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/heartbeatserver/config"
	"github.com/dana280/heartbeat-app/internal/platform/tokenstore"
	"github.com/dana280/heartbeat-app/internal/test/fakes"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

// NewFakeDependencies creates in-memory fakes for local development:
// push attempts are logged instead of sent, so the full real-time and
// fallback flow runs with no credentials at all.
func NewFakeDependencies(_ *config.AppConfig, logger zerolog.Logger) *relay.ServiceDependencies {
	return &relay.ServiceDependencies{
		TokenStore:   tokenstore.NewMemoryStore(),
		PushNotifier: fakes.NewPushNotifier(logger),
	}
}
