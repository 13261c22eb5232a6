package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dana280/heartbeat-app/cmd"
	"github.com/dana280/heartbeat-app/heartbeatserver"
	"github.com/dana280/heartbeat-app/heartbeatserver/config"
	"github.com/dana280/heartbeat-app/internal/app"
	"github.com/dana280/heartbeat-app/internal/platform/push"
	"github.com/dana280/heartbeat-app/internal/platform/tokenstore"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

func main() {
	// 1. Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().Str("service", "heartbeat-app").Logger()

	// 2. Load config.yaml and apply env overrides
	cfg, err := cmd.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg, err = config.UpdateConfigWithEnvOverrides(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to finalize configuration")
	}

	// 3. Create dependencies
	deps, err := newDependencies(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}

	// 4. Create and run the service
	server := heartbeatserver.New(cfg, deps, logger)
	app.Run(context.Background(), logger, server)
}

// newDependencies builds the service dependency container.
func newDependencies(cfg *config.AppConfig, logger zerolog.Logger) (*relay.ServiceDependencies, error) {
	if cfg.RunMode == "local" {
		logger.Warn().Msg("Running in 'local' mode. All external dependencies will be faked.")
		return cmd.NewFakeDependencies(cfg, logger), nil
	}

	tokens, err := newTokenStore(cfg)
	if err != nil {
		return nil, err
	}

	account, err := push.LoadServiceAccount(cfg.Push.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load push credentials: %w", err)
	}
	if account == nil {
		logger.Warn().Msg("No push credentials configured. Offline heartbeats will report partner_offline.")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	tokenSource, err := push.NewCachedTokenSource(account, cfg.Push.TokenEndpoint, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token source: %w", err)
	}

	projectID := ""
	if account != nil {
		projectID = account.ProjectID
	}
	notifier := push.NewNotifier(tokenSource, projectID, cfg.Push.SendEndpoint, httpClient, logger)

	return &relay.ServiceDependencies{
		TokenStore:   tokens,
		PushNotifier: notifier,
	}, nil
}

// newTokenStore selects the push-token store backend from config.
func newTokenStore(cfg *config.AppConfig) (relay.TokenStore, error) {
	switch cfg.TokenStore.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.TokenStore.Redis.Addr})
		return tokenstore.NewRedisStore(client)
	case "", "memory":
		return tokenstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token_store type %q", cfg.TokenStore.Type)
	}
}
