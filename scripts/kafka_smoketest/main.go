// Command kafka_smoketest sends one ledger event through the kafka event bus
// and waits for it to come back, to check a local broker setup.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	infra_eventbus "github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RunSmokeTest emits an AccountReconciledEvent and returns once a handler on
// the same bus has decoded it.
func RunSmokeTest(ctx context.Context, logger *slog.Logger) error {
	brokers := env("BROKERS", "localhost:9092")
	topic := env("TOPIC", "fammee.ledger.smoketest")

	bus, err := infra_eventbus.NewWithKafka(brokers, topic, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	want := &events.AccountReconciledEvent{
		Ledger:           events.NewLedger(uuid.New(), uuid.New(), uuid.New()),
		ReconciliationID: uuid.New(),
		Difference:       decimal.RequireFromString("-12.34"),
	}
	got := make(chan *events.AccountReconciledEvent, 1)
	bus.Register(events.AccountReconciled, func(_ context.Context, e events.Event) error {
		rec, ok := e.(*events.AccountReconciledEvent)
		if ok && rec.ReconciliationID == want.ReconciliationID {
			select {
			case got <- rec:
			default:
			}
		}
		return nil
	})

	if err := bus.Emit(ctx, want); err != nil {
		return err
	}
	logger.Info("produced", "topic", topic, "reconciliation_id", want.ReconciliationID)

	select {
	case rec := <-got:
		if !rec.Difference.Equal(want.Difference) || rec.FamilyID != want.FamilyID {
			return fmt.Errorf("event changed in transit: %+v", rec)
		}
		logger.Info("consumed", "family_id", rec.FamilyID, "difference", rec.Difference)
		return nil
	case <-ctx.Done():
		return errors.New("no event consumed before the deadline")
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := RunSmokeTest(ctx, logger); err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kafka smoke test passed")
}
