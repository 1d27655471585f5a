package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/pagemark/pagemark-server/internal/config"
	"github.com/pagemark/pagemark-server/internal/logger"
	"github.com/pagemark/pagemark-server/internal/store"
	"github.com/pagemark/pagemark-server/internal/store/badgerdb"
	"github.com/pagemark/pagemark-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured storage backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DatabasePath()

	var (
		st  store.Store
		err error
	)
	switch cfg.Database.Backend {
	case config.BackendBadger:
		st, err = badgerdb.Open(dbPath, log.Logger)
	case config.BackendSQLite:
		st, err = sqlite.Open(dbPath, log.Logger)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Backend, err)
	}

	log.Info("Database initialized", "backend", cfg.Database.Backend, "path", dbPath)

	return &StoreHandle{Store: st}, nil
}
