// Package app assembles the runtime graph from configuration: the durable KV
// file, the device identity, the optional networked record store and the
// progress facade over the backend chosen at startup.
package app

import (
	"context"
	"fmt"

	"github.com/dyluth/hunt/internal/config"
	"github.com/dyluth/hunt/internal/identity"
	"github.com/dyluth/hunt/internal/kv"
	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/pkg/records"
	"github.com/dyluth/hunt/pkg/stages"
	"go.uber.org/zap"
)

// App holds the wired components for one participant on this machine.
type App struct {
	Config   *config.HuntConfig
	Logger   *zap.Logger
	KV       *kv.FileStore
	Identity *identity.Provider
	Registry *stages.Registry
	Store    records.Store // Nil unless the remote backend is active
	Facade   *progress.Facade
}

// New wires an App. The backend is selected once, here, from the config's
// environment signal.
func New(cfg *config.HuntConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build stage registry: %w", err)
	}

	statePath, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	store := kv.NewFileStore(statePath, logger.Named("kv"))
	ident := identity.New(store)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		KV:       store,
		Identity: ident,
		Registry: registry,
	}

	env := cfg.Environment()
	mode := progress.SelectMode(env)
	logger.Debug("selected progress backend",
		zap.String("mode", string(mode)),
		zap.String("hostname", env.Hostname),
		zap.Bool("remote_configured", env.RemoteConfigured))

	var backend progress.Backend
	switch mode {
	case progress.ModeRemote:
		rs, err := OpenStore(cfg.Storage.Remote)
		if err != nil {
			return nil, err
		}
		a.Store = rs
		backend = progress.NewRemoteBackend(ident, rs, logger.Named("remote"))
	default:
		backend = progress.NewLocalBackend(store, logger.Named("local"))
	}

	a.Facade = progress.NewFacade(backend, mode)
	return a, nil
}

// OpenStore opens the networked record store for the configured driver.
// Redis connections are established lazily on first use.
func OpenStore(rc config.RemoteConfig) (records.Store, error) {
	switch rc.Driver {
	case config.DriverSQLite:
		s, err := records.OpenSQLite(rc.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite record store: %w", err)
		}
		return s, nil
	case config.DriverRedis, "":
		s, err := records.NewRedisStoreFromURL(rc.RedisURL, rc.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis record store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown record store driver '%s'", rc.Driver)
	}
}

// Mode reports which backend is active.
func (a *App) Mode() progress.Mode {
	return a.Facade.Mode()
}

// DeviceID returns this participant's device identity.
func (a *App) DeviceID() string {
	return a.Identity.DeviceID()
}

// Ping checks the networked record store. It is a no-op in local mode.
func (a *App) Ping(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Ping(ctx)
}

// Close releases the record store, if any.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
