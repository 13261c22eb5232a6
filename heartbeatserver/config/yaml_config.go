package config

// --- YAML-Specific Structs ---

type YamlRedisConfig struct {
	Addr string `yaml:"addr"`
}

// YamlTokenStoreConfig selects where push-delivery tokens live.
type YamlTokenStoreConfig struct {
	Type  string          `yaml:"type"` // "memory" or "redis"
	Redis YamlRedisConfig `yaml:"redis"`
}

// YamlPushConfig configures the FCM fallback path. An empty
// credentials_file disables push without disabling the real-time path.
type YamlPushConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenEndpoint   string `yaml:"token_endpoint"`
	SendEndpoint    string `yaml:"send_endpoint"`
}

// YamlConfig defines the structure for unmarshaling the embedded config.yaml file.
type YamlConfig struct {
	RunMode    string               `yaml:"run_mode"`
	Port       string               `yaml:"port"`
	DocRoot    string               `yaml:"doc_root"`
	TokenStore YamlTokenStoreConfig `yaml:"token_store"`
	Push       YamlPushConfig       `yaml:"push"`
}

// NewConfigFromYaml converts the raw unmarshaled data into a clean,
// base AppConfig struct. Stage 1 of configuration loading: the struct
// exists but environment overrides have not been applied.
func NewConfigFromYaml(yamlCfg *YamlConfig) (*AppConfig, error) {
	appCfg := &AppConfig{
		RunMode:    yamlCfg.RunMode,
		Port:       yamlCfg.Port,
		DocRoot:    yamlCfg.DocRoot,
		TokenStore: yamlCfg.TokenStore,
		Push:       yamlCfg.Push,
	}
	return appCfg, nil
}
