package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/eventbus"
)

// MemoryEventBus is a synchronous in-process implementation of the Bus interface.
// Handler errors are logged and never returned to the emitter: the operation that
// produced the event has already committed.
type MemoryEventBus struct {
	handlers  map[events.EventType][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers:  make(map[events.EventType][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]events.Event, 0),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(event.Type())]...)
	b.mu.Unlock()

	executeHandlers(ctx, b.logger, event, handlers)
	return nil
}

// ClearPublished clears the list of published events. This is useful for testing.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = make([]events.Event, 0)
}

// Published returns a copy of the published events. This is useful for testing.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// Close is a no-op; it lets the memory bus stand in wherever a closable bus is expected.
func (b *MemoryEventBus) Close() error { return nil }

var _ eventbus.Bus = (*MemoryEventBus)(nil)
