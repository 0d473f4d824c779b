package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/harborline/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig    `mapstructure:"server"`
	Logger   sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Local    sharedConfig.LocalConfig     `mapstructure:"local"`
	Remote   sharedConfig.RemoteConfig    `mapstructure:"remote"`
	Auth     sharedConfig.AuthConfig      `mapstructure:"auth"`
	Backend  sharedConfig.BackendOverride `mapstructure:"backend"`
	Timezone string                       `mapstructure:"timezone"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configuration from file and HARBORLINE_* environment variables.
// An explicit path must exist; the default search locations are optional so
// the CLI works out of the box with defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("HARBORLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults registers every key so AutomaticEnv can bind it, including the
// empty backend override fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")

	v.SetDefault("local.path", "harborline.db")

	v.SetDefault("remote.database.host", "localhost")
	v.SetDefault("remote.database.port", 3306)
	v.SetDefault("remote.database.username", "harborline")
	v.SetDefault("remote.database.password", "")
	v.SetDefault("remote.database.params", "")
	v.SetDefault("remote.database.max_idle_conns", 5)
	v.SetDefault("remote.database.max_open_conns", 20)
	v.SetDefault("remote.database.conn_max_lifetime", 60)

	v.SetDefault("remote.redis.host", "localhost")
	v.SetDefault("remote.redis.port", 6379)
	v.SetDefault("remote.redis.password", "")
	v.SetDefault("remote.redis.db", 0)

	v.SetDefault("auth.client_secret", "")
	v.SetDefault("auth.redirect_port", 0)
	v.SetDefault("auth.scopes", []string{"openid", "email"})
	v.SetDefault("auth.callback_timeout_seconds", 120)

	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.auth_domain", "")
	v.SetDefault("backend.project_id", "")
	v.SetDefault("backend.org_key", "")

	v.SetDefault("timezone", "UTC")
}
