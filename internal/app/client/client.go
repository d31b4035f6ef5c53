package client

import (
	"fmt"

	"golang.org/x/exp/slog"

	"cogniflow/internal/app/client/config"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

// App owns the selected backend for the lifetime of the process.
type App struct {
	Backend Backend

	cfg *config.Config
	log *slog.Logger
}

// New builds the backend named by the configuration. The choice is final:
// switching modes means restarting with different settings.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.StorageMode {
	case config.ModeRemote:
		backend, err = newRemoteBackend(cfg, log)
	case config.ModeEmbedded:
		backend, err = newEmbeddedBackend(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
	if err != nil {
		return nil, err
	}

	log.Info("backend ready", "mode", cfg.StorageMode)

	return &App{Backend: backend, cfg: cfg, log: log}, nil
}

// LocalStore returns the embedded object store, or nil in remote mode.
// The snapshot manager needs it; nothing else should.
func (a *App) LocalStore() *objectstore.Store {
	if eb, ok := a.Backend.(*embeddedBackend); ok {
		return eb.Store()
	}
	return nil
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Close() error { return a.Backend.Close() }
