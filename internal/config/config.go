// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/prodscout/prodscout/internal/research"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Reports ReportsConfig `mapstructure:"reports"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

// ReportsConfig sets where artifacts are written.
type ReportsConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// HTTPConfig controls outbound fetch behavior for all sources.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	MaxRows        int    `mapstructure:"max_rows"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// AdminConfig controls the health/metrics listener used in recurring mode.
type AdminConfig struct {
	Listen string `mapstructure:"listen"`
}

// Load builds a Config from the global Viper state (config file,
// environment, flags).
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default values on the given Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("reports.base_dir", "reports")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (compatible; prodscout/1.0)")
	v.SetDefault("http.max_rows", 20)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Reports.BaseDir) == "" {
		return fmt.Errorf("%w: reports.base_dir must be set", research.ErrConfiguration)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: http.timeout_seconds must be > 0", research.ErrConfiguration)
	}
	if c.HTTP.MaxRows <= 0 {
		return fmt.Errorf("%w: http.max_rows must be > 0", research.ErrConfiguration)
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// SMTP is the digest transport credential object. The password must
// never be logged or persisted under the report directory.
type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// LoadSMTP reads the SMTP credential JSON file.
func LoadSMTP(path string) (SMTP, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return SMTP{}, fmt.Errorf("%w: read smtp config %s: %v", research.ErrConfiguration, path, err)
	}

	var cfg SMTP
	if err := v.Unmarshal(&cfg); err != nil {
		return SMTP{}, fmt.Errorf("%w: unmarshal smtp config: %v", research.ErrConfiguration, err)
	}

	if cfg.Host == "" || cfg.Port == 0 || cfg.User == "" {
		return SMTP{}, fmt.Errorf("%w: smtp config requires host, port and user", research.ErrConfiguration)
	}
	return cfg, nil
}
