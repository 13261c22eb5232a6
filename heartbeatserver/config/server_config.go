package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// AppConfig is the canonical, validated configuration object used
// throughout the application. It is created by NewConfigFromYaml
// (Stage 1) and finalized by UpdateConfigWithEnvOverrides (Stage 2).
type AppConfig struct {
	RunMode    string
	Port       string
	DocRoot    string
	TokenStore YamlTokenStoreConfig
	Push       YamlPushConfig
}

// UpdateConfigWithEnvOverrides takes the base configuration (created
// from YAML) and completes it by applying environment variables and
// final validation.
func UpdateConfigWithEnvOverrides(cfg *AppConfig, logger zerolog.Logger) (*AppConfig, error) {
	logger.Debug().Msg("Applying environment variable overrides...")

	if mode := os.Getenv("RUN_MODE"); mode != "" {
		logger.Debug().Str("key", "RUN_MODE").Msg("Overriding config value from env")
		cfg.RunMode = mode
	}
	if port := os.Getenv("PORT"); port != "" {
		logger.Debug().Str("key", "PORT").Msg("Overriding config value from env")
		cfg.Port = port
	}
	if docRoot := os.Getenv("DOC_ROOT"); docRoot != "" {
		logger.Debug().Str("key", "DOC_ROOT").Msg("Overriding config value from env")
		cfg.DocRoot = docRoot
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		logger.Debug().Str("key", "REDIS_ADDR").Msg("Overriding config value from env")
		cfg.TokenStore.Redis.Addr = redisAddr
	}
	if credentials := os.Getenv("PUSH_CREDENTIALS_FILE"); credentials != "" {
		logger.Debug().Str("key", "PUSH_CREDENTIALS_FILE").Msg("Overriding config value from env")
		cfg.Push.CredentialsFile = credentials
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is not set in config or env var")
	}
	if cfg.DocRoot == "" {
		return nil, fmt.Errorf("DOC_ROOT is not set in config or env var")
	}
	if cfg.TokenStore.Type == "redis" && cfg.TokenStore.Redis.Addr == "" {
		return nil, fmt.Errorf("token_store.type is redis but no REDIS_ADDR is configured")
	}

	logger.Debug().Msg("Configuration finalized and validated successfully")
	return cfg, nil
}
