package app

import (
	"context"

	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/domain/events"
)

// setupEventBus registers the post-commit subscribers: account cache
// invalidation and the ledger audit log.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger

	cache.RegisterInvalidation(bus, a.Deps.AccountCache, logger)

	audit := func(_ context.Context, e events.Event) error {
		attrs := []any{"event", e.Type()}
		if scoped, ok := e.(events.Scoped); ok {
			attrs = append(attrs, "family_id", scoped.Family())
		}
		logger.Info("ledger event", attrs...)
		return nil
	}
	for _, t := range events.All() {
		bus.Register(t, audit)
	}
}
