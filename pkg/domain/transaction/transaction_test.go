package transaction_test

import (
	"testing"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func completed(t *testing.T, typ transaction.Type, amount, fee string, src, dst *uuid.UUID) *transaction.Transaction {
	t.Helper()
	tx, err := transaction.New(transaction.Draft{
		Type:        typ,
		Status:      transaction.StatusCompleted,
		Amount:      dec(amount),
		Fee:         dec(fee),
		AccountID:   src,
		ToAccountID: dst,
		CreatedByID: uuid.New(),
	})
	require.NoError(t, err)
	return tx
}

func TestDeltas_SignConvention(t *testing.T) {
	x, y := uuid.New(), uuid.New()

	tests := []struct {
		name string
		tx   *transaction.Transaction
		want map[uuid.UUID]string
	}{
		{"income nets the fee", completed(t, transaction.TypeIncome, "100", "2.50", &x, nil), map[uuid.UUID]string{x: "97.50"}},
		{"expense adds the fee", completed(t, transaction.TypeExpense, "100", "2.50", &x, nil), map[uuid.UUID]string{x: "-102.50"}},
		{"transfer fee on source only", completed(t, transaction.TypeTransfer, "100", "2.50", &x, &y), map[uuid.UUID]string{x: "-102.50", y: "100.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transaction.Balances([]*transaction.Transaction{tt.tx})
			require.Len(t, got, len(tt.want))
			for id, want := range tt.want {
				assert.Equal(t, want, got[id].StringFixed(2))
			}
		})
	}
}

func TestInverse_RestoresZero(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	tx := completed(t, transaction.TypeTransfer, "33.33", "0.67", &x, &y)
	sum := map[uuid.UUID]decimal.Decimal{}
	for _, d := range append(tx.Deltas(), transaction.Inverse(tx.Deltas())...) {
		sum[d.AccountID] = sum[d.AccountID].Add(d.Amount)
	}
	assert.True(t, sum[x].IsZero())
	assert.True(t, sum[y].IsZero())
}

func TestNew_PlannedCarriesNoEffect(t *testing.T) {
	x := uuid.New()
	tx, err := transaction.New(transaction.Draft{
		Type:        transaction.TypeExpense,
		Status:      transaction.StatusPlanned,
		Amount:      dec("500"),
		AccountID:   &x,
		CreatedByID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, tx.Amount.IsZero())
	assert.Equal(t, "500.00", tx.PlanAmount.StringFixed(2))
	assert.Empty(t, tx.Deltas())
	assert.Equal(t, transaction.ItemPending, tx.Status.ItemStatus())
}

func TestNew_PlannedAmountSources(t *testing.T) {
	creator := uuid.New()
	tests := []struct {
		name   string
		amount decimal.Decimal
		plan   *decimal.Decimal
		want   string
		err    error
	}{
		{"plan amount only", decimal.Zero, ptr(dec("500")), "500.00", nil},
		{"amount only", dec("500"), nil, "500.00", nil},
		{"both agree", dec("500"), ptr(dec("500.001")), "500.00", nil},
		{"zero plan amount falls back", dec("75"), ptr(decimal.Zero), "75.00", nil},
		{"both disagree", dec("500"), ptr(dec("450")), "", transaction.ErrPlanAmountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := transaction.New(transaction.Draft{
				Type:        transaction.TypeExpense,
				Status:      transaction.StatusPlanned,
				Amount:      tt.amount,
				PlanAmount:  tt.plan,
				CreatedByID: creator,
			})
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, tx.Amount.IsZero())
			assert.Equal(t, tt.want, tx.PlanAmount.StringFixed(2))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	x := uuid.New()
	creator := uuid.New()
	tests := []struct {
		name  string
		draft transaction.Draft
		want  error
	}{
		{"bad type", transaction.Draft{Type: "gift", CreatedByID: creator, AccountID: &x}, transaction.ErrInvalidType},
		{"void on create", transaction.Draft{Type: transaction.TypeExpense, Status: transaction.StatusVoid, CreatedByID: creator}, transaction.ErrInvalidStatus},
		{"completed without account", transaction.Draft{Type: transaction.TypeExpense, Status: transaction.StatusCompleted, CreatedByID: creator}, transaction.ErrAccountRequired},
		{"transfer without destination", transaction.Draft{Type: transaction.TypeTransfer, Status: transaction.StatusCompleted, AccountID: &x, CreatedByID: creator}, transaction.ErrDestinationRequired},
		{"transfer to itself", transaction.Draft{Type: transaction.TypeTransfer, Status: transaction.StatusCompleted, AccountID: &x, ToAccountID: &x, CreatedByID: creator}, transaction.ErrSameAccount},
		{"negative amount", transaction.Draft{Type: transaction.TypeIncome, Amount: dec("-1"), AccountID: &x, CreatedByID: creator}, transaction.ErrNegativeAmount},
		{"negative fee", transaction.Draft{Type: transaction.TypeIncome, Fee: dec("-1"), AccountID: &x, CreatedByID: creator}, transaction.ErrNegativeAmount},
		{"no creator", transaction.Draft{Type: transaction.TypeIncome, AccountID: &x}, transaction.ErrCreatorRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transaction.New(tt.draft)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestNew_DropsDestinationForNonTransfer(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	tx := completed(t, transaction.TypeExpense, "10", "0", &x, &y)
	assert.Nil(t, tx.ToAccountID)
	assert.Len(t, tx.Deltas(), 1)
}

func TestComplete_ResolvesOverrides(t *testing.T) {
	x := uuid.New()
	tx, err := transaction.New(transaction.Draft{
		Type:        transaction.TypeExpense,
		Status:      transaction.StatusPlanned,
		Amount:      dec("500"),
		CreatedByID: uuid.New(),
	})
	require.NoError(t, err)

	when := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tx.Complete(transaction.Completion{
		Amount:      ptr(dec("480")),
		Fee:         ptr(dec("10")),
		AccountID:   &x,
		Description: ptr("groceries"),
		Date:        &when,
	}))

	assert.Equal(t, transaction.StatusCompleted, tx.Status)
	assert.Equal(t, "480.00", tx.Amount.StringFixed(2))
	assert.Equal(t, "10.00", tx.Fee.StringFixed(2))
	assert.Equal(t, "500.00", tx.PlanAmount.StringFixed(2))
	assert.Equal(t, "groceries", tx.Description)
	assert.Equal(t, when, tx.Date)
	require.Len(t, tx.Deltas(), 1)
	assert.Equal(t, "-490.00", tx.Deltas()[0].Amount.StringFixed(2))
	assert.Equal(t, transaction.ItemDone, tx.Status.ItemStatus())
}

func TestComplete_FallsBackToStoredValues(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	tx, err := transaction.New(transaction.Draft{
		Type:        transaction.TypeTransfer,
		Status:      transaction.StatusPlanned,
		Amount:      dec("75"),
		Fee:         dec("1.25"),
		AccountID:   &x,
		ToAccountID: &y,
		CreatedByID: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Complete(transaction.Completion{}))

	got := transaction.Balances([]*transaction.Transaction{tx})
	assert.Equal(t, "-76.25", got[x].StringFixed(2))
	assert.Equal(t, "75.00", got[y].StringFixed(2))
}

func TestComplete_Errors(t *testing.T) {
	x := uuid.New()
	planned := func() *transaction.Transaction {
		tx, err := transaction.New(transaction.Draft{
			Type:        transaction.TypeExpense,
			Status:      transaction.StatusPlanned,
			Amount:      dec("20"),
			CreatedByID: uuid.New(),
		})
		require.NoError(t, err)
		return tx
	}

	err := planned().Complete(transaction.Completion{})
	assert.ErrorIs(t, err, transaction.ErrUnresolvedAccount)
	assert.ErrorIs(t, err, domain.ErrConsistency)

	err = planned().Complete(transaction.Completion{AccountID: &x, Amount: ptr(dec("-5"))})
	assert.ErrorIs(t, err, transaction.ErrNegativeAmount)

	done := planned()
	require.NoError(t, done.Complete(transaction.Completion{AccountID: &x}))
	assert.ErrorIs(t, done.Complete(transaction.Completion{AccountID: &x}), transaction.ErrNotPlanned)
}

func TestApply_StatusRules(t *testing.T) {
	x := uuid.New()
	void := transaction.StatusVoid
	planned := transaction.StatusPlanned
	completedStatus := transaction.StatusCompleted

	p, err := transaction.New(transaction.Draft{Type: transaction.TypeExpense, Status: transaction.StatusPlanned, Amount: dec("9"), CreatedByID: uuid.New()})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Apply(transaction.Patch{Status: &completedStatus}), transaction.ErrStatusChange)
	require.NoError(t, p.Cancel())
	assert.Equal(t, transaction.ItemCancelled, p.Status.ItemStatus())
	assert.Empty(t, p.Deltas())
	assert.ErrorIs(t, p.Apply(transaction.Patch{Status: &planned}), transaction.ErrStatusChange)

	c := completed(t, transaction.TypeExpense, "9", "0", &x, nil)
	assert.ErrorIs(t, c.Apply(transaction.Patch{Status: &void}), transaction.ErrStatusChange)
	require.NoError(t, c.Apply(transaction.Patch{Status: &completedStatus, Description: ptr("lunch"), Tags: []string{"food"}}))
	assert.Equal(t, "lunch", c.Description)
	assert.Equal(t, []string{"food"}, c.Tags)
	assert.Equal(t, "-9.00", c.Deltas()[0].Amount.StringFixed(2))
}
