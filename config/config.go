package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration
type Config struct {
	// HTTP server configuration
	HTTP HTTPConfig

	// Feature flags
	Features FeatureFlags

	// Environment store configuration
	Store StoreConfig

	// Expiration reaper configuration
	Reaper ReaperConfig

	// Authentication: exactly one of FakeUser or Proxy must be set
	Auth AuthConfig

	// Allowlist is inline YAML; AllowlistFile is read when Allowlist is empty
	Allowlist     string `env:"ALLOWLIST"`
	AllowlistFile string `env:"ALLOWLIST_FILE"`

	// GatewayHost is the public host environments are served under
	GatewayHost string `env:"GATEWAY_HOST"`

	// SlackWebhook receives env change notifications when set
	SlackWebhook string `env:"EPH_SLACK_WEBHOOK"`

	LogLevel string `env:"EPHDASH_LOG_LEVEL" envDefault:"info"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host string `env:"EPHDASH_HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"EPHDASH_HTTP_PORT" envDefault:"8080"`
}

// FeatureFlags holds feature flag settings
type FeatureFlags struct {
	ChartEnabled bool `env:"EPHDASH_FEATURE_CHART" envDefault:"true"`
}

// StoreConfig selects and configures the environment store
type StoreConfig struct {
	Driver          string `env:"EPHDASH_STORE_DRIVER" envDefault:"memory"`
	SQLitePath      string `env:"EPHDASH_SQLITE_PATH" envDefault:"./data/envs.db"`
	MongoDBURI      string `env:"EPHDASH_MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBDatabase string `env:"EPHDASH_MONGODB_DATABASE" envDefault:"ephdash"`
}

// ReaperConfig holds expiration reaper configuration
type ReaperConfig struct {
	Enabled           bool          `env:"EPHDASH_REAPER_ENABLED" envDefault:"true"`
	Interval          time.Duration `env:"EPHDASH_REAPER_INTERVAL" envDefault:"30s"`
	DefaultExpiration time.Duration `env:"EPHDASH_DEFAULT_EXPIRATION" envDefault:"15m"`
}

// AuthConfig holds how the dashboard learns who the user is
type AuthConfig struct {
	FakeUser string `env:"EPHDASH_AUTH_FAKE_USER"`
	Proxy    string `env:"EPHDASH_AUTH_PROXY"`
}

// Store drivers
const (
	DriverMemory  = "memory"
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverMongoDB:
	default:
		return fmt.Errorf("unknown store driver %q (want memory, sqlite or mongodb)", c.Store.Driver)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTP.Port)
	}
	if c.Reaper.Enabled && c.Reaper.Interval <= 0 {
		return fmt.Errorf("reaper interval must be positive, got %s", c.Reaper.Interval)
	}
	if c.Reaper.DefaultExpiration <= 0 {
		return fmt.Errorf("default expiration must be positive, got %s", c.Reaper.DefaultExpiration)
	}
	return nil
}

// GetAddress returns the HTTP server address
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
