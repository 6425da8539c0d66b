package account_test

import (
	"context"
	"testing"
	"time"

	infracache "github.com/fammee/finance/infra/cache"
	"github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	accountsvc "github.com/fammee/finance/pkg/service/account"
	"github.com/fammee/finance/pkg/service/ledger"
	recsvc "github.com/fammee/finance/pkg/service/reconciliation"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	ctx    context.Context
	seed   *testutils.Seed
	bus    *eventbus.MemoryEventBus
	svc    *accountsvc.Service
	ledger *ledger.Service
	parent user.Actor
	child  user.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	seed := testutils.NewSeed(t)
	logger := testutils.DiscardLogger()
	bus := eventbus.NewWithMemory(logger)
	c := infracache.NewMemoryCache(time.Minute)
	cache.RegisterInvalidation(bus, c, logger)
	return &env{
		ctx:  context.Background(),
		seed: seed,
		bus:  bus,
		svc: accountsvc.NewService(config.Deps{
			Uow: seed.UoW, EventBus: bus, AccountCache: c, Logger: logger,
		}),
		ledger: ledger.New(seed.UoW, bus, logger),
		parent: testutils.Actor(seed.Parent),
		child:  testutils.Actor(seed.Child),
	}
}

func TestCreateAccount_DefaultsAndStartingBalance(t *testing.T) {
	e := newEnv(t)
	a, err := e.svc.CreateAccount(e.ctx, e.parent, accountsvc.Draft{
		Name: "Savings", Balance: decimal.RequireFromString("250.555"),
	})
	require.NoError(t, err)
	assert.Equal(t, account.TypeWallet, a.Type)
	assert.Equal(t, account.DefaultColor, a.Color)
	assert.Equal(t, account.StatusActive, a.Status)
	assert.Equal(t, e.seed.Parent.ID, a.UserID)
	assert.Equal(t, "250.56", e.seed.Balance(t, a.ID).StringFixed(2))
}

func TestCreateAccount_Ownership(t *testing.T) {
	e := newEnv(t)

	a, err := e.svc.CreateAccount(e.ctx, e.parent, accountsvc.Draft{Name: "Pocket", UserID: &e.seed.Child.ID})
	require.NoError(t, err)
	assert.Equal(t, e.seed.Child.ID, a.UserID)

	_, err = e.svc.CreateAccount(e.ctx, e.child, accountsvc.Draft{Name: "Theirs", UserID: &e.seed.Parent.ID})
	assert.ErrorIs(t, err, user.ErrParentOnly)

	_, otherParent, _ := e.seed.NewFamily(t, "Other")
	_, err = e.svc.CreateAccount(e.ctx, e.parent, accountsvc.Draft{Name: "Stray", UserID: &otherParent.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.CreateAccount(e.ctx, e.parent, accountsvc.Draft{Name: "Bad", Type: "vault"})
	assert.ErrorIs(t, err, account.ErrInvalidType)
}

func TestListAccounts_Visibility(t *testing.T) {
	e := newEnv(t)
	mine := e.seed.Account(t, e.seed.Parent, "Bank", "0")
	pocket := e.seed.Account(t, e.seed.Child, "Pocket", "0")

	all, err := e.svc.ListAccounts(e.ctx, e.parent, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, mine.ID, all[0].ID)

	onlyChild, err := e.svc.ListAccounts(e.ctx, e.parent, &e.seed.Child.ID)
	require.NoError(t, err)
	require.Len(t, onlyChild, 1)
	assert.Equal(t, pocket.ID, onlyChild[0].ID)

	childView, err := e.svc.ListAccounts(e.ctx, e.child, &e.seed.Parent.ID)
	require.NoError(t, err)
	require.Len(t, childView, 1)
	assert.Equal(t, pocket.ID, childView[0].ID)

	_, err = e.svc.GetAccount(e.ctx, e.child, mine.ID)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestListAccounts_CacheInvalidatedByLedger(t *testing.T) {
	e := newEnv(t)
	a := e.seed.Account(t, e.seed.Parent, "Bank", "100")

	first, err := e.svc.ListAccounts(e.ctx, e.parent, nil)
	require.NoError(t, err)
	assert.Equal(t, "100.00", first[0].Balance.StringFixed(2))

	_, err = e.ledger.Create(e.ctx, e.parent, transaction.Draft{
		Type: transaction.TypeExpense, Amount: decimal.NewFromInt(30), AccountID: &a.ID,
	})
	require.NoError(t, err)

	after, err := e.svc.ListAccounts(e.ctx, e.parent, nil)
	require.NoError(t, err)
	assert.Equal(t, "70.00", after[0].Balance.StringFixed(2))
}

func TestUpdateAccount_NeverWritesBalance(t *testing.T) {
	e := newEnv(t)
	a := e.seed.Account(t, e.seed.Parent, "Bank", "42")

	name, archived := "Old bank", account.StatusArchived
	got, err := e.svc.UpdateAccount(e.ctx, e.parent, a.ID, account.Patch{Name: &name, Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, "Old bank", got.Name)
	assert.Equal(t, account.StatusArchived, got.Status)
	assert.Equal(t, "42.00", e.seed.Balance(t, a.ID).StringFixed(2))

	empty := ""
	_, err = e.svc.UpdateAccount(e.ctx, e.parent, a.ID, account.Patch{Name: &empty})
	assert.ErrorIs(t, err, account.ErrNameRequired)
}

func TestDeleteAccount_RefusesWhenReferenced(t *testing.T) {
	e := newEnv(t)
	used := e.seed.Account(t, e.seed.Parent, "Used", "0")
	reconciled := e.seed.Account(t, e.seed.Parent, "Reconciled", "0")
	spare := e.seed.Account(t, e.seed.Parent, "Spare", "0")

	_, err := e.ledger.Create(e.ctx, e.parent, transaction.Draft{
		Type: transaction.TypeIncome, Amount: decimal.NewFromInt(1), AccountID: &used.ID,
	})
	require.NoError(t, err)
	target := decimal.NewFromInt(5)
	_, err = recsvc.New(e.seed.UoW, e.bus, testutils.DiscardLogger()).Reconcile(e.ctx, e.parent, reconciliation.Request{
		AccountID: reconciled.ID, NewBalance: &target, PerformedByID: e.seed.Parent.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.svc.DeleteAccount(e.ctx, e.parent, used.ID), account.ErrAccountInUse)
	assert.ErrorIs(t, e.svc.DeleteAccount(e.ctx, e.parent, reconciled.ID), domain.ErrConflict)
	require.NoError(t, e.svc.DeleteAccount(e.ctx, e.parent, spare.ID))
	assert.ErrorIs(t, e.svc.DeleteAccount(e.ctx, e.parent, uuid.New()), account.ErrAccountNotFound)

	left, err := e.svc.ListAccounts(e.ctx, e.parent, nil)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
