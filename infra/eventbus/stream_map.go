package eventbus

import (
	"fmt"
	"strings"

	"github.com/fammee/finance/pkg/domain/events"
)

// groupNameFor returns the consumer group for handlers of eventType, so every
// registered event type receives every message of the stream.
func groupNameFor(stream string, eventType events.EventType) string {
	return nameFor(stream+":group", eventType)
}

// consumerNameFor returns the redis consumer name for the event type.
func consumerNameFor(eventType events.EventType) string {
	return nameFor("consumer", eventType)
}

// dlqNameFor returns the dead letter stream or topic for a base stream.
func dlqNameFor(stream string) string {
	return stream + ":dlq"
}

func nameFor(prefix string, eventType events.EventType) string {
	parts := strings.Split(eventType.String(), ".")
	if len(parts) == 2 {
		return fmt.Sprintf(
			"%s:%s:%s",
			prefix,
			strings.ToLower(parts[0]),
			strings.ToLower(parts[1]))
	}
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(eventType.String()))
}
