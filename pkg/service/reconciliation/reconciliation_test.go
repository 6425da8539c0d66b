package reconciliation_test

import (
	"context"
	"testing"

	"github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/service/ledger"
	recsvc "github.com/fammee/finance/pkg/service/reconciliation"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*recsvc.Service, *testutils.Seed, *eventbus.MemoryEventBus) {
	t.Helper()
	seed := testutils.NewSeed(t)
	bus := eventbus.NewWithMemory(testutils.DiscardLogger())
	return recsvc.New(seed.UoW, bus, testutils.DiscardLogger()), seed, bus
}

func balance(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestReconcile_SetsBalanceAndRecordsDifference(t *testing.T) {
	svc, seed, bus := newService(t)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	acc := seed.Account(t, seed.Parent, "Wallet", "120.00")

	rec, err := svc.Reconcile(ctx, actor, reconciliation.Request{
		AccountID:     acc.ID,
		NewBalance:    balance("100.00"),
		PerformedByID: seed.Parent.ID,
		Note:          "counted cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "120.00", rec.PreviousBalance.StringFixed(2))
	assert.Equal(t, "100.00", rec.NewBalance.StringFixed(2))
	assert.Equal(t, "-20.00", rec.Difference.StringFixed(2))
	assert.Equal(t, "100.00", seed.Balance(t, acc.ID).StringFixed(2))

	published := bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.AccountReconciled.String(), published[0].Type())
}

func TestReconcile_DoesNotTouchTransactions(t *testing.T) {
	svc, seed, bus := newService(t)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	acc := seed.Account(t, seed.Parent, "Wallet", "0")
	led := ledger.New(seed.UoW, bus, testutils.DiscardLogger())
	tx, err := led.Create(ctx, actor, transaction.Draft{
		Type: transaction.TypeIncome, Amount: decimal.NewFromInt(50), AccountID: &acc.ID,
	})
	require.NoError(t, err)

	_, err = svc.Reconcile(ctx, actor, reconciliation.Request{
		AccountID: acc.ID, NewBalance: balance("10"), PerformedByID: seed.Parent.ID,
	})
	require.NoError(t, err)

	stored, err := led.Get(ctx, actor, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", stored.Amount.StringFixed(2))
	assert.Equal(t, transaction.StatusCompleted, stored.Status)
}

func TestReconcile_RepeatStillAppends(t *testing.T) {
	svc, seed, _ := newService(t)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	acc := seed.Account(t, seed.Parent, "Wallet", "5")

	req := reconciliation.Request{AccountID: acc.ID, NewBalance: balance("7.5"), PerformedByID: seed.Child.ID}
	_, err := svc.Reconcile(ctx, actor, req)
	require.NoError(t, err)
	second, err := svc.Reconcile(ctx, actor, req)
	require.NoError(t, err)
	assert.True(t, second.Difference.IsZero())

	history, err := svc.ListByAccount(ctx, actor, acc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, "2.50", history[1].Difference.StringFixed(2))
}

func TestReconcile_Errors(t *testing.T) {
	svc, seed, bus := newService(t)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	acc := seed.Account(t, seed.Parent, "Wallet", "5")
	_, otherParent, _ := seed.NewFamily(t, "Other")

	tests := []struct {
		name string
		req  reconciliation.Request
		want error
	}{
		{"missing account id", reconciliation.Request{NewBalance: balance("1"), PerformedByID: seed.Parent.ID}, reconciliation.ErrAccountRequired},
		{"missing new balance", reconciliation.Request{AccountID: acc.ID, PerformedByID: seed.Parent.ID}, reconciliation.ErrNewBalanceRequired},
		{"missing performer", reconciliation.Request{AccountID: acc.ID, NewBalance: balance("1")}, reconciliation.ErrPerformerRequired},
		{"unknown account", reconciliation.Request{AccountID: uuid.New(), NewBalance: balance("1"), PerformedByID: seed.Parent.ID}, account.ErrAccountNotFound},
		{"performer from another family", reconciliation.Request{AccountID: acc.ID, NewBalance: balance("1"), PerformedByID: otherParent.ID}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reconcile(ctx, actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, "5.00", seed.Balance(t, acc.ID).StringFixed(2))
	assert.Empty(t, bus.Published())

	_, err := svc.ListByAccount(ctx, actor, uuid.Nil)
	assert.ErrorIs(t, err, reconciliation.ErrAccountRequired)
	_, err = svc.ListByAccount(ctx, testutils.Actor(otherParent), acc.ID)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
