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
	"github.com/segmentio/kafka-go"
)

// KafkaEventBus publishes ledger events to one topic keyed by family, so the
// events of a family stay ordered within a partition.
type KafkaEventBus struct {
	brokers []string
	topic   string
	writer  *kafka.Writer
	dlq     *kafka.Writer
	logger  *slog.Logger

	handlers    map[events.EventType][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex
	readerOnce  sync.Once
	reader      *kafka.Reader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(brokers, topic string, logger *slog.Logger) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka event bus: topic is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &KafkaEventBus{
		brokers: parsed,
		topic:   topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			Topic:                  topic,
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
		},
		dlq: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			Topic:                  topic + ".dlq",
			AllowAutoTopicCreation: true,
		},
		logger:   logger.With("bus", "kafka", "topic", topic),
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		ctx:      ctx,
		cancel:   cancel,
	}

	conn, err := kafka.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()
	return b, nil
}

// Emit publishes an event to Kafka.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return err
	}
	key := []byte(event.Type())
	if scoped, ok := event.(events.Scoped); ok {
		key = []byte(scoped.Family().String())
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   raw,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(event.Type())}},
	}); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register registers an event handler for a specific event type. The first
// registration starts the topic reader.
func (b *KafkaEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMtx.Unlock()

	b.readerOnce.Do(func() {
		b.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  b.brokers,
			GroupID:  b.topic + ".handlers",
			Topic:    b.topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		})
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.consumeLoop()
		}()
	})
}

func (b *KafkaEventBus) consumeLoop() {
	for {
		msg, err := b.reader.FetchMessage(b.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka consume error", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		b.process(msg)
		if err := b.reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("kafka commit error", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (b *KafkaEventBus) process(msg kafka.Message) {
	evt, err := decode(msg.Value)
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "offset", msg.Offset)
		b.publishToDLQ(msg)
		return
	}

	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(evt.Type())]...)
	b.handlersMtx.RUnlock()
	if len(handlers) == 0 {
		return
	}
	if !executeHandlers(b.ctx, b.logger, evt, handlers) {
		b.publishToDLQ(msg)
	}
}

func (b *KafkaEventBus) publishToDLQ(msg kafka.Message) {
	err := b.dlq.WriteMessages(b.ctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: msg.Headers,
	})
	if err != nil {
		b.logger.Error("failed to publish to DLQ", "error", err, "topic", b.dlq.Topic)
	}
}

// Close stops the reader and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	if b.reader != nil {
		_ = b.reader.Close()
	}
	b.wg.Wait()
	_ = b.dlq.Close()
	return b.writer.Close()
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, part := range strings.Split(brokers, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
