package cache

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/google/uuid"
)

// AccountCache is a read-through cache of a family's account list.
// It is never the source of truth for balances: every ledger event drops the
// affected family's entry.
type AccountCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, familyID uuid.UUID) (accounts []*account.Account, ok bool, err error)
	Set(ctx context.Context, familyID uuid.UUID, accounts []*account.Account) error
	Invalidate(ctx context.Context, familyID uuid.UUID) error
	// Flush drops every entry.
	Flush(ctx context.Context) error
}

// RegisterInvalidation subscribes c to every ledger event on bus.
func RegisterInvalidation(bus eventbus.Bus, c AccountCache, logger *slog.Logger) {
	handler := func(ctx context.Context, e events.Event) error {
		scoped, ok := e.(events.Scoped)
		if !ok || scoped.Family() == uuid.Nil {
			return c.Flush(ctx)
		}
		if err := c.Invalidate(ctx, scoped.Family()); err != nil {
			logger.Error("account cache invalidation failed", "event", e.Type(), "error", err)
			return err
		}
		return nil
	}
	for _, t := range events.All() {
		bus.Register(t, handler)
	}
}

// Nop is an AccountCache that never hits.
type Nop struct{}

func (Nop) Get(context.Context, uuid.UUID) ([]*account.Account, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, uuid.UUID, []*account.Account) error       { return nil }
func (Nop) Invalidate(context.Context, uuid.UUID) error                    { return nil }
func (Nop) Flush(context.Context) error                                    { return nil }
