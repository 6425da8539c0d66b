package budget_test

import (
	"context"
	"testing"

	"github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	budgetsvc "github.com/fammee/finance/pkg/service/budget"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BudgetTestSuite struct {
	suite.Suite
	ctx    context.Context
	seed   *testutils.Seed
	bus    *eventbus.MemoryEventBus
	svc    *budgetsvc.Service
	actor  user.Actor
	wallet *account.Account
	trip   *budget.Budget
}

func (s *BudgetTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.seed = testutils.NewSeed(s.T())
	s.bus = eventbus.NewWithMemory(testutils.DiscardLogger())
	led := ledger.New(s.seed.UoW, s.bus, testutils.DiscardLogger())
	s.svc = budgetsvc.New(s.seed.UoW, led, s.bus, testutils.DiscardLogger())
	s.actor = testutils.Actor(s.seed.Parent)
	s.wallet = s.seed.Account(s.T(), s.seed.Parent, "Wallet", "1000")

	var err error
	s.trip, err = s.svc.Create(s.ctx, s.actor, budget.Draft{Title: "Trip", Limit: dec("800")})
	s.Require().NoError(err)
}

func TestBudgetTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetTestSuite))
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr[T any](v T) *T { return &v }

func (s *BudgetTestSuite) balance() string {
	return s.seed.Balance(s.T(), s.wallet.ID).StringFixed(2)
}

func (s *BudgetTestSuite) add(name, amount string) budget.ItemView {
	it, err := s.svc.AddItem(s.ctx, s.actor, s.trip.ID, budgetsvc.ItemDraft{
		Name: name, Amount: dec(amount), AccountID: &s.wallet.ID,
	})
	s.Require().NoError(err)
	return it
}

func (s *BudgetTestSuite) TestCreateDefaults() {
	s.Equal(budget.StatusActive, s.trip.Status)
	s.Equal(s.seed.Parent.ID, s.trip.CreatedByID)
	s.Equal(budget.PeriodOneTime, s.trip.Period)

	_, otherParent, _ := s.seed.NewFamily(s.T(), "Other")
	_, err := s.svc.Create(s.ctx, s.actor, budget.Draft{Title: "x", CreatedByID: otherParent.ID})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *BudgetTestSuite) TestAddItemIsPendingWithoutBalanceEffect() {
	it := s.add("Hotel", "500")
	s.Equal(transaction.ItemPending, it.Status)
	s.Equal("500.00", it.PlannedAmount.StringFixed(2))
	s.True(it.ActualAmount.IsZero())
	s.Equal("1000.00", s.balance())
}

func (s *BudgetTestSuite) TestCompleteItem() {
	it := s.add("Hotel", "500")
	done, err := s.svc.CompleteItem(s.ctx, s.actor, s.trip.ID, it.ID, transaction.Completion{
		Amount: ptr(dec("480")), Fee: ptr(dec("10")),
	})
	s.Require().NoError(err)
	s.Equal(transaction.ItemDone, done.Status)
	s.Equal("480.00", done.ActualAmount.StringFixed(2))
	s.Equal("500.00", done.PlannedAmount.StringFixed(2))
	s.Equal("510.00", s.balance())

	o, err := s.svc.Get(s.ctx, s.actor, s.trip.ID)
	s.Require().NoError(err)
	s.Equal(1, o.Summary.Done)
	s.Equal("480.00", o.Summary.Spent.StringFixed(2))
	s.Equal("320.00", o.Summary.Remaining.StringFixed(2))
}

func (s *BudgetTestSuite) TestCancelAndNoReactivate() {
	it := s.add("Museum", "40")
	cancelled, err := s.svc.CancelItem(s.ctx, s.actor, s.trip.ID, it.ID)
	s.Require().NoError(err)
	s.Equal(transaction.ItemCancelled, cancelled.Status)
	s.Equal("1000.00", s.balance())

	pending := transaction.ItemPending
	_, err = s.svc.UpdateItem(s.ctx, s.actor, s.trip.ID, it.ID, budgetsvc.ItemPatch{Status: &pending})
	s.ErrorIs(err, budget.ErrReactivate)

	renamed, err := s.svc.UpdateItem(s.ctx, s.actor, s.trip.ID, it.ID, budgetsvc.ItemPatch{Name: ptr("Gallery")})
	s.Require().NoError(err)
	s.Equal("Gallery", renamed.Name)
	s.Equal(transaction.ItemCancelled, renamed.Status)
}

func (s *BudgetTestSuite) TestUpdateItemToDoneUsesPlan() {
	it := s.add("Taxi", "30")
	done := transaction.ItemDone
	got, err := s.svc.UpdateItem(s.ctx, s.actor, s.trip.ID, it.ID, budgetsvc.ItemPatch{Status: &done})
	s.Require().NoError(err)
	s.Equal(transaction.ItemDone, got.Status)
	s.Equal("970.00", s.balance())
}

func (s *BudgetTestSuite) TestArchiveCascade() {
	s.add("Hotel", "500")
	s.add("Food", "100")
	spent := s.add("Flight", "200")
	_, err := s.svc.CompleteItem(s.ctx, s.actor, s.trip.ID, spent.ID, transaction.Completion{})
	s.Require().NoError(err)
	s.Equal("800.00", s.balance())

	voided, err := s.svc.Archive(s.ctx, s.actor, s.trip.ID)
	s.Require().NoError(err)
	s.EqualValues(2, voided)
	s.Equal("800.00", s.balance())

	o, err := s.svc.Get(s.ctx, s.actor, s.trip.ID)
	s.Require().NoError(err)
	s.Equal(budget.StatusArchived, o.Status)
	s.Equal(2, o.Summary.Cancelled)
	s.Equal(1, o.Summary.Done)
	for _, it := range o.Items {
		if it.ID == spent.ID {
			s.Equal(transaction.ItemDone, it.Status)
		} else {
			s.Equal(transaction.ItemCancelled, it.Status)
		}
	}

	list, err := s.svc.List(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Empty(list)

	published := s.bus.Published()
	s.Equal(events.BudgetArchived.String(), published[len(published)-1].Type())

	_, err = s.svc.AddItem(s.ctx, s.actor, s.trip.ID, budgetsvc.ItemDraft{Name: "late", Amount: dec("1")})
	s.ErrorIs(err, budget.ErrArchived)
}

func (s *BudgetTestSuite) TestOnlyCreatorEdits() {
	child := testutils.Actor(s.seed.Child)
	_, err := s.svc.Update(s.ctx, child, s.trip.ID, budget.Patch{Title: ptr("Mine")})
	s.ErrorIs(err, budget.ErrNotCreator)

	b, err := s.svc.Update(s.ctx, s.actor, s.trip.ID, budget.Patch{Title: ptr("Summer trip"), Limit: ptr(dec("900"))})
	s.Require().NoError(err)
	s.Equal("Summer trip", b.Title)
	s.Equal("900.00", b.Limit.StringFixed(2))
}

func (s *BudgetTestSuite) TestItemMustBelongToBudget() {
	it := s.add("Hotel", "500")
	other, err := s.svc.Create(s.ctx, s.actor, budget.Draft{Title: "Other"})
	s.Require().NoError(err)

	_, err = s.svc.CompleteItem(s.ctx, s.actor, other.ID, it.ID, transaction.Completion{})
	s.ErrorIs(err, budget.ErrNotItem)
	s.ErrorIs(s.svc.DeleteItem(s.ctx, s.actor, other.ID, it.ID), budget.ErrNotItem)
}

func (s *BudgetTestSuite) TestDeleteDoneItemReverts() {
	it := s.add("Hotel", "250")
	_, err := s.svc.CompleteItem(s.ctx, s.actor, s.trip.ID, it.ID, transaction.Completion{})
	s.Require().NoError(err)
	s.Equal("750.00", s.balance())

	s.Require().NoError(s.svc.DeleteItem(s.ctx, s.actor, s.trip.ID, it.ID))
	s.Equal("1000.00", s.balance())

	o, err := s.svc.Get(s.ctx, s.actor, s.trip.ID)
	s.Require().NoError(err)
	s.Empty(o.Items)
}

func (s *BudgetTestSuite) TestListIncludesItems() {
	s.add("Hotel", "500")
	list, err := s.svc.List(s.ctx, s.actor)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Len(list[0].Items, 1)
	s.Equal("500.00", list[0].Summary.Planned.StringFixed(2))
}
