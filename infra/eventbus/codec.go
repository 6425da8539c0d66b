package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/eventbus"
)

// envelope is the wire form shared by the redis and kafka buses.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("event bus: marshal failed: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("event bus: envelope marshal failed: %w", err)
	}
	return env, nil
}

// decode rebuilds the concrete event from an envelope using events.EventTypes.
func decode(raw []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("event bus: envelope unmarshal failed: %w", err)
	}
	constructor, ok := events.EventTypes[env.Type]
	if !ok {
		return nil, fmt.Errorf("event bus: unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("event bus: payload unmarshal failed for %s: %w", env.Type, err)
	}
	return evt, nil
}

// executeHandlers runs every handler, recovering panics. It reports whether all succeeded.
func executeHandlers(
	ctx context.Context,
	logger *slog.Logger,
	evt events.Event,
	handlers []eventbus.HandlerFunc,
) bool {
	ok := true
	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic recovered", "panic", r, "event_type", evt.Type())
					ok = false
				}
			}()
			if err := handler(ctx, evt); err != nil {
				logger.Error("handler error", "error", err, "event_type", evt.Type())
				ok = false
			}
		}()
	}
	return ok
}
