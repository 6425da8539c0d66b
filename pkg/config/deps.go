package config

import (
	"log/slog"

	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/fammee/finance/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow          repository.UnitOfWork
	EventBus     eventbus.Bus
	AccountCache cache.AccountCache
	Logger       *slog.Logger
	Config       *App
}
