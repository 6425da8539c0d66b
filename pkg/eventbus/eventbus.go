package eventbus

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/events"
)

// HandlerFunc handles one event delivered by a Bus.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for emitting and subscribing to ledger events.
// Emit is called only after the unit of work that produced the event committed.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
	Register(eventType events.EventType, handler HandlerFunc)
}

// Publish emits event on bus after the producing unit of work committed. A
// failed emit is logged, not returned: the change it describes already happened.
func Publish(ctx context.Context, bus Bus, logger *slog.Logger, event events.Event) {
	if bus == nil {
		return
	}
	if err := bus.Emit(ctx, event); err != nil {
		logger.Warn("event emit failed", "event", event.Type(), "error", err)
	}
}
