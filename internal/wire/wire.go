// Package wire provides dependency injection for the courier service.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/example/courier/internal/adapters/httpapi"
	"github.com/example/courier/internal/adapters/postgres"
	"github.com/example/courier/internal/adapters/sqlite"
	"github.com/example/courier/internal/app"
	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/db"
	"github.com/example/courier/internal/identity"
	"github.com/example/courier/internal/ports/primary"
	"github.com/example/courier/internal/ports/secondary"
)

var (
	cfg       *config.Config
	handle    *sql.DB
	service   primary.MessagingService
	logger    *slog.Logger
	initOnce  sync.Once
	initError error
)

// Init loads configuration and builds the object graph once. The config
// file path may be empty, in which case defaults plus environment
// variables apply.
func Init(configPath string) error {
	initOnce.Do(func() {
		initError = initAll(configPath)
	})
	return initError
}

func initAll(configPath string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

	handle, err = db.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.Migrate(handle, cfg.Storage.Driver); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	service = app.NewMessagingService(newStore(cfg.Storage.Driver, handle))
	return nil
}

func newStore(driver string, handle *sql.DB) secondary.Store {
	if driver == config.DriverPostgres {
		return postgres.NewStore(handle)
	}
	return sqlite.NewStore(handle)
}

// Config returns the loaded configuration. Init must have succeeded.
func Config() *config.Config {
	return cfg
}

// Router builds the HTTP handler over the singleton service.
func Router() (http.Handler, error) {
	verifier, err := newVerifier(cfg.Identity)
	if err != nil {
		return nil, err
	}

	return httpapi.NewRouter(service, httpapi.Options{
		Verifier:    verifier,
		Logger:      logger,
		Development: cfg.IsDevelopment(),
		RateRPS:     cfg.RateLimit.RPS,
		RateBurst:   cfg.RateLimit.Burst,
	}), nil
}

func newVerifier(cfg config.IdentityConfig) (identity.Verifier, error) {
	switch cfg.Mode {
	case config.IdentityModeJWT:
		return identity.NewTokenVerifier(cfg.JWTSecret), nil
	case config.IdentityModeGateway:
		return identity.GatewayVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}

// Close releases the database handle.
func Close() error {
	if handle != nil {
		return handle.Close()
	}
	return nil
}
