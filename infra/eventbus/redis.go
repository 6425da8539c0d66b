package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes ledger events to one Redis stream. Each registered
// event type reads the stream through its own consumer group.
type RedisEventBus struct {
	client *redis.Client
	stream string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379")
// stream: Name of the Redis stream to use
func NewWithRedis(url, stream string, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || stream == "" {
		return nil, fmt.Errorf("redis event bus: url and stream are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		stream: stream,
		logger: logger.With("bus", "redis", "stream", stream),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Emit publishes an event to the Redis stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	b.logger.Debug("emitting event", "type", event.Type())

	raw, err := encode(event)
	if err != nil {
		b.logger.Error("failed to encode event", "error", err, "type", event.Type())
		return err
	}

	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"type": event.Type(), "event": string(raw)},
	}).Err(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	return nil
}

// Register starts a consumer group reader for eventType that calls handler for each event.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	group := groupNameFor(b.stream, eventType)
	consumer := consumerNameFor(eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, b.stream, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "group", group)
		return
	}
	b.logger.Info("registering handler", "event_type", eventType, "group", group)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, group, consumer, handler)
	}()
}

func (b *RedisEventBus) consume(eventType events.EventType, group, consumer string, handler eventbus.HandlerFunc) {
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{b.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "group", group)
				time.Sleep(time.Second)
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				b.handle(eventType, msg, handler)
				if err := b.client.XAck(b.ctx, b.stream, group, msg.ID).Err(); err != nil {
					b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
				}
			}
		}
	}
}

func (b *RedisEventBus) handle(eventType events.EventType, msg redis.XMessage, handler eventbus.HandlerFunc) {
	if t, _ := msg.Values["type"].(string); t != eventType.String() {
		return
	}
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return
	}
	evt, err := decode([]byte(raw))
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "msg_id", msg.ID)
		b.pushToDLQ(msg.Values)
		return
	}
	if !executeHandlers(b.ctx, b.logger, evt, []eventbus.HandlerFunc{handler}) {
		b.pushToDLQ(msg.Values)
	}
}

// pushToDLQ pushes the raw message to a dead letter stream for inspection or reprocessing.
func (b *RedisEventBus) pushToDLQ(values map[string]any) {
	dlq := dlqNameFor(b.stream)
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops every consumer and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
