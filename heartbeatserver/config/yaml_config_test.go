package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana280/heartbeat-app/heartbeatserver/config"
)

func TestNewConfigFromYaml(t *testing.T) {
	t.Run("Success - maps all fields correctly from YAML struct", func(t *testing.T) {
		// Arrange
		yamlCfg := &config.YamlConfig{
			RunMode: "yaml-mode",
			Port:    "3000",
			DocRoot: "./public",
			TokenStore: config.YamlTokenStoreConfig{
				Type: "redis",
				Redis: config.YamlRedisConfig{
					Addr: "yaml-redis:6379",
				},
			},
			Push: config.YamlPushConfig{
				CredentialsFile: "/etc/hb/sa.json",
				TokenEndpoint:   "http://yaml-token",
				SendEndpoint:    "http://yaml-fcm",
			},
		}

		// Act
		cfg, err := config.NewConfigFromYaml(yamlCfg)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "yaml-mode", cfg.RunMode)
		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, "./public", cfg.DocRoot)
		assert.Equal(t, "redis", cfg.TokenStore.Type)
		assert.Equal(t, "yaml-redis:6379", cfg.TokenStore.Redis.Addr)
		assert.Equal(t, "/etc/hb/sa.json", cfg.Push.CredentialsFile)
		assert.Equal(t, "http://yaml-token", cfg.Push.TokenEndpoint)
		assert.Equal(t, "http://yaml-fcm", cfg.Push.SendEndpoint)
	})
}
