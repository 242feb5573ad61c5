// Package config loads the console configuration from configs/config.yml
// with CONSOLE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charging_console/internal/logger"

	"github.com/spf13/viper"
)

const envPrefix = "CONSOLE"

var (
	errBaseURLRequired     = errors.New("upstream.base_url is required")
	errJWTSecretRequired   = errors.New("auth.jwt_secret is required")
	errNonPositiveInterval = errors.New("poll intervals must be positive")
	errFetchTimeoutTooLong = errors.New("poll.fetch_timeout must not exceed poll.detail_interval")
	errNonPositiveJournal  = errors.New("journal.retention and journal.prune_interval must be positive")
	errUnknownLogLevel     = errors.New("log_level must be one of debug, info, warn, error")
)

type Upstream struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIToken string        `mapstructure:"api_token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Poll struct {
	DetailInterval   time.Duration `mapstructure:"detail_interval"`
	OverviewInterval time.Duration `mapstructure:"overview_interval"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type OCPP struct {
	Port int `mapstructure:"port"`
}

// Journal bounds how long poll events are kept.
type Journal struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// Config is the fully resolved console configuration.
type Config struct {
	Port     string   `mapstructure:"port"`
	LogLevel string   `mapstructure:"log_level"`
	Upstream Upstream `mapstructure:"upstream"`
	Poll     Poll     `mapstructure:"poll"`
	Auth     Auth     `mapstructure:"auth"`
	DB       DB       `mapstructure:"db"`
	CORS     CORS     `mapstructure:"cors"`
	OCPP     OCPP     `mapstructure:"ocpp"`
	Journal  Journal  `mapstructure:"journal"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("upstream.timeout", 15*time.Second)
	v.SetDefault("poll.detail_interval", 5*time.Second)
	v.SetDefault("poll.overview_interval", 10*time.Second)
	v.SetDefault("poll.fetch_timeout", 4*time.Second)
	v.SetDefault("db.path", "console.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("ocpp.port", 8000)
	v.SetDefault("journal.retention", 7*24*time.Hour)
	v.SetDefault("journal.prune_interval", time.Hour)
	// keys without a default must be registered for env-only setups
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.api_token", "")
	v.SetDefault("auth.jwt_secret", "")
}

// Load reads config.yml from dir. A missing file is not an error: defaults
// and environment variables are used instead.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants Load cannot express as defaults.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errBaseURLRequired
	}
	if c.Auth.JWTSecret == "" {
		return errJWTSecretRequired
	}
	if c.Poll.DetailInterval <= 0 || c.Poll.OverviewInterval <= 0 {
		return errNonPositiveInterval
	}
	if c.Poll.FetchTimeout > c.Poll.DetailInterval {
		return errFetchTimeoutTooLong
	}
	if c.Journal.Retention <= 0 || c.Journal.PruneInterval <= 0 {
		return errNonPositiveJournal
	}
	if !logger.ValidLevel(c.LogLevel) {
		return errUnknownLogLevel
	}
	return nil
}
