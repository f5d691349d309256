// Package config loads service configuration from an optional YAML file
// with environment variable overrides. A .env file in the working
// directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Identity modes
const (
	IdentityModeGateway = "gateway" // trust X-User-Id from the platform gateway
	IdentityModeJWT     = "jwt"     // verify bearer tokens from the identity service
)

// Config represents the courier service configuration.
type Config struct {
	ListenAddr  string          `yaml:"listen_addr"`
	Environment string          `yaml:"environment"`
	Storage     StorageConfig   `yaml:"storage"`
	Identity    IdentityConfig  `yaml:"identity"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the sqlite database file path.
	Path string `yaml:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn"`
}

// IdentityConfig selects the identity verification mode.
type IdentityConfig struct {
	Mode      string `yaml:"mode"`
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		ListenAddr:  ":5006",
		Environment: EnvDevelopment,
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "courier.db",
		},
		Identity: IdentityConfig{
			Mode: IdentityModeGateway,
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if
// path is non-empty it must exist), then environment overrides.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COURIER_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("COURIER_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("COURIER_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("COURIER_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("COURIER_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("COURIER_IDENTITY_MODE"); v != "" {
		cfg.Identity.Mode = v
	}
	if v := os.Getenv("COURIER_JWT_SECRET"); v != "" {
		cfg.Identity.JWTSecret = v
	}
	if v := os.Getenv("COURIER_RATE_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = rps
		}
	}
	if v := os.Getenv("COURIER_RATE_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = burst
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("sqlite driver requires storage.path")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("postgres driver requires storage.dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Identity.Mode {
	case IdentityModeGateway:
	case IdentityModeJWT:
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("jwt identity mode requires identity.jwt_secret")
		}
	default:
		return fmt.Errorf("unknown identity mode %q", c.Identity.Mode)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	return nil
}

// IsDevelopment reports whether error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}
