package initializer

import (
	"errors"
	"fmt"

	"github.com/fammee/finance/infra"
	infra_repository "github.com/fammee/finance/infra/repository"
	"github.com/fammee/finance/pkg/config"
)

// InitializeDependencies opens the database, event bus and account cache
// named by cfg. The returned cleanup closes them.
func InitializeDependencies(cfg *config.App) (
	deps config.Deps,
	cleanup func(),
	err error,
) {
	logger := setupLogger(cfg.Log)
	deps.Logger = logger
	deps.Config = cfg

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return deps, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return deps, nil, err
	}
	if infra.IsSQLite(cfg.DB.Url) {
		if err := infra.Migrate(db, cfg.DB); err != nil {
			_ = sqlDB.Close()
			return deps, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}
	deps.Uow = infra_repository.NewUoW(db)

	bus, busCloser, err := infra.NewEventBus(cfg, logger)
	if err != nil {
		_ = sqlDB.Close()
		return deps, nil, err
	}
	deps.EventBus = bus

	deps.AccountCache, err = infra.NewAccountCache(cfg, logger)
	if err != nil {
		_ = busCloser.Close()
		_ = sqlDB.Close()
		return deps, nil, err
	}

	cleanup = func() {
		if err := errors.Join(busCloser.Close(), sqlDB.Close()); err != nil {
			logger.Warn("Shutdown error", "error", err)
		}
	}
	logger.Info("Dependencies initialized",
		"event_bus", cfg.EventBus.Driver,
		"cache", cfg.Cache.Driver,
		"sqlite", infra.IsSQLite(cfg.DB.Url),
	)
	return deps, cleanup, nil
}
