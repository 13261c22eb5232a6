package config_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana280/heartbeat-app/heartbeatserver/config"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		RunMode: "prod",
		Port:    "3000",
		DocRoot: "./public",
		TokenStore: config.YamlTokenStoreConfig{
			Type: "memory",
		},
	}
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	t.Run("env vars override yaml values", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("RUN_MODE", "local")
		t.Setenv("DOC_ROOT", "/srv/hb")
		t.Setenv("PUSH_CREDENTIALS_FILE", "/secrets/sa.json")

		cfg, err := config.UpdateConfigWithEnvOverrides(baseConfig(), zerolog.Nop())

		require.NoError(t, err)
		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, "local", cfg.RunMode)
		assert.Equal(t, "/srv/hb", cfg.DocRoot)
		assert.Equal(t, "/secrets/sa.json", cfg.Push.CredentialsFile)
	})

	t.Run("missing port fails validation", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Port = ""

		_, err := config.UpdateConfigWithEnvOverrides(cfg, zerolog.Nop())

		assert.Error(t, err)
	})

	t.Run("redis store without addr fails validation", func(t *testing.T) {
		cfg := baseConfig()
		cfg.TokenStore.Type = "redis"

		_, err := config.UpdateConfigWithEnvOverrides(cfg, zerolog.Nop())

		assert.Error(t, err)
	})

	t.Run("REDIS_ADDR satisfies the redis store", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")
		cfg := baseConfig()
		cfg.TokenStore.Type = "redis"

		cfg, err := config.UpdateConfigWithEnvOverrides(cfg, zerolog.Nop())

		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", cfg.TokenStore.Redis.Addr)
	})
}
