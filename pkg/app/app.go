package app

import (
	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/service/account"
	"github.com/fammee/finance/pkg/service/auth"
	"github.com/fammee/finance/pkg/service/budget"
	"github.com/fammee/finance/pkg/service/category"
	"github.com/fammee/finance/pkg/service/importer"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/pkg/service/reconciliation"
	"github.com/fammee/finance/pkg/service/user"
)

// App holds every service, built once over shared dependencies.
type App struct {
	Deps                  config.Deps
	Config                *config.App
	AuthService           *auth.Service
	UserService           *user.Service
	AccountService        *account.Service
	LedgerService         *ledger.Service
	BudgetService         *budget.Service
	ReconciliationService *reconciliation.Service
	CategoryService       *category.Service
	ImporterService       *importer.Service
}

// New builds every service over deps. cfg replaces deps.Config when set.
func New(deps config.Deps, cfg *config.App) *App {
	if cfg != nil {
		deps.Config = cfg
	}
	if deps.AccountCache == nil {
		deps.AccountCache = cache.Nop{}
	}
	app := &App{
		Deps:   deps,
		Config: deps.Config,
	}
	app.setupEventBus()

	led := ledger.New(deps.Uow, deps.EventBus, deps.Logger)
	app.LedgerService = led
	if deps.Config != nil && deps.Config.Auth != nil && deps.Config.Auth.Jwt != nil {
		app.AuthService = auth.NewWithJWT(deps.Uow, deps.Config.Auth.Jwt, deps.Logger)
	}
	app.UserService = user.New(deps.Uow, deps.Logger)
	app.AccountService = account.NewService(deps)
	app.BudgetService = budget.New(deps.Uow, led, deps.EventBus, deps.Logger)
	app.ReconciliationService = reconciliation.New(deps.Uow, deps.EventBus, deps.Logger)
	app.CategoryService = category.New(deps.Uow, deps.Logger)
	app.ImporterService = importer.New(deps.Uow, led, deps.Logger)
	return app
}
