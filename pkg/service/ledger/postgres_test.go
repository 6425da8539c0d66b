package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_ConcurrentMutationsOnOneAccount(t *testing.T) {
	seed := testutils.NewPostgresSeed(t)
	logger := testutils.DiscardLogger()
	svc := ledger.New(seed.UoW, eventbus.NewWithMemory(logger), logger)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	bank := seed.Account(t, seed.Parent, "Bank", "0")
	cash := seed.Account(t, seed.Parent, "Cash", "0")

	_, err := svc.Create(ctx, actor, transaction.Draft{
		Type: transaction.TypeIncome, Amount: dec("1000"), AccountID: &bank.ID,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := transaction.Draft{Type: transaction.TypeExpense, Amount: dec("10"), Fee: dec("1"), AccountID: &bank.ID}
			if i%3 == 0 {
				d = transaction.Draft{Type: transaction.TypeTransfer, Amount: dec("5"), Fee: dec("0.50"), AccountID: &bank.ID, ToAccountID: &cash.ID}
			}
			_, err := svc.Create(ctx, actor, d)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 20 expenses of 11.00 and 10 transfers of 5.50 from the source side.
	assert.Equal(t, "725.00", seed.Balance(t, bank.ID).StringFixed(2))
	assert.Equal(t, "50.00", seed.Balance(t, cash.ID).StringFixed(2))

	report, err := svc.Recalculate(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Drifted)
}

func TestPostgres_ConcurrentCompletesApplyOnce(t *testing.T) {
	seed := testutils.NewPostgresSeed(t)
	logger := testutils.DiscardLogger()
	bus := eventbus.NewWithMemory(logger)
	svc := ledger.New(seed.UoW, bus, logger)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	bank := seed.Account(t, seed.Parent, "Bank", "0")

	_, err := svc.Create(ctx, actor, transaction.Draft{
		Type: transaction.TypeIncome, Amount: dec("1000"), AccountID: &bank.ID,
	})
	require.NoError(t, err)
	planned, err := svc.Create(ctx, actor, transaction.Draft{
		Type: transaction.TypeExpense, Status: transaction.StatusPlanned, Amount: dec("100"), AccountID: &bank.ID,
	})
	require.NoError(t, err)
	bus.ClearPublished()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Complete(ctx, actor, planned.ID, transaction.Completion{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}

	var completed int
	for _, e := range bus.Published() {
		if e.Type() == events.TransactionCompleted.String() {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, "900.00", seed.Balance(t, bank.ID).StringFixed(2))

	report, err := svc.Recalculate(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Drifted)
}

func TestPostgres_CompleteRacingDelete(t *testing.T) {
	seed := testutils.NewPostgresSeed(t)
	logger := testutils.DiscardLogger()
	svc := ledger.New(seed.UoW, eventbus.NewWithMemory(logger), logger)
	ctx := context.Background()
	actor := testutils.Actor(seed.Parent)
	bank := seed.Account(t, seed.Parent, "Bank", "0")

	_, err := svc.Create(ctx, actor, transaction.Draft{
		Type: transaction.TypeIncome, Amount: dec("1000"), AccountID: &bank.ID,
	})
	require.NoError(t, err)

	for range 10 {
		planned, err := svc.Create(ctx, actor, transaction.Draft{
			Type: transaction.TypeExpense, Status: transaction.StatusPlanned, Amount: dec("40"), AccountID: &bank.ID,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var completeErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, completeErr = svc.Complete(ctx, actor, planned.ID, transaction.Completion{})
		}()
		go func() {
			defer wg.Done()
			deleteErr = svc.Delete(ctx, actor, planned.ID)
		}()
		wg.Wait()

		// Whichever runs second sees the other's result: a completed row is
		// reverted on delete, a deleted row cannot be completed.
		require.NoError(t, deleteErr)
		if completeErr != nil {
			require.ErrorIs(t, completeErr, domain.ErrNotFound)
		}
		_, err = svc.Get(ctx, actor, planned.ID)
		require.ErrorIs(t, err, transaction.ErrTransactionNotFound)
		require.Equal(t, "1000.00", seed.Balance(t, bank.ID).StringFixed(2))
	}

	report, err := svc.Recalculate(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Drifted)
}
