package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDebug reports whether the server runs in debug mode.
func (s *ServerConfig) IsDebug() bool {
	return s.Mode == "debug"
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LocalConfig locates the single-device SQLite file that holds the key-value
// slots (records, backend descriptor, session).
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig addresses the shared MySQL server. The database name is not
// part of it: it comes from the backend descriptor's project id.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Params          string `mapstructure:"params"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN(database string) string {
	params := d.Params
	if params == "" {
		params = "charset=utf8mb4&parseTime=True&loc=UTC"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		d.Username, d.Password, d.Host, d.Port, database, params)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RemoteConfig struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// AuthConfig configures the interactive OAuth sign-in. The client id is the
// backend descriptor's api key; the provider endpoints hang off its auth domain.
type AuthConfig struct {
	ClientSecret           string   `mapstructure:"client_secret"`
	RedirectPort           int      `mapstructure:"redirect_port"`
	Scopes                 []string `mapstructure:"scopes"`
	CallbackTimeoutSeconds int      `mapstructure:"callback_timeout_seconds"`
}

func (a *AuthConfig) CallbackTimeout() time.Duration {
	if a.CallbackTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(a.CallbackTimeoutSeconds) * time.Second
}

// BackendOverride is the deployment-time injected backend descriptor. When any
// field is set it replaces the locally persisted descriptor for the session.
type BackendOverride struct {
	APIKey     string `mapstructure:"api_key"`
	AuthDomain string `mapstructure:"auth_domain"`
	ProjectID  string `mapstructure:"project_id"`
	OrgKey     string `mapstructure:"org_key"`
}

func (b *BackendOverride) IsSet() bool {
	return b.APIKey != "" || b.AuthDomain != "" || b.ProjectID != "" || b.OrgKey != ""
}
