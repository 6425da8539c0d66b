package ledger_test

import (
	"time"

	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/google/uuid"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func ids(txs []*transaction.Transaction) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func (s *LedgerTestSuite) TestListScopesByRole() {
	pocket := s.seed.Account(s.T(), s.seed.Child, "Pocket", "0")
	mine := s.create(transaction.Draft{
		Type: transaction.TypeExpense, Amount: dec("5"), AccountID: &s.bank.ID, Date: day(2024, 5, 1, 9),
	})
	childs := s.create(transaction.Draft{
		Type: transaction.TypeIncome, Amount: dec("2"), AccountID: &pocket.ID, Date: day(2024, 5, 2, 9),
	})

	all, err := s.svc.List(s.ctx, s.actor, ledger.Query{})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{childs.ID, mine.ID}, ids(all))

	child := testutils.Actor(s.seed.Child)
	own, err := s.svc.List(s.ctx, child, ledger.Query{})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{childs.ID}, ids(own))

	// A child naming other users still only sees their own accounts.
	own, err = s.svc.List(s.ctx, child, ledger.Query{Dashboard: true, UserIDs: []uuid.UUID{s.seed.Parent.ID}})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{childs.ID}, ids(own))

	dash, err := s.svc.List(s.ctx, s.actor, ledger.Query{Dashboard: true})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{mine.ID}, ids(dash))

	dash, err = s.svc.List(s.ctx, s.actor, ledger.Query{Dashboard: true, UserIDs: []uuid.UUID{s.seed.Child.ID}})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{childs.ID}, ids(dash))
}

func (s *LedgerTestSuite) TestListDashboardAccountsIntersect() {
	s.create(transaction.Draft{Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.bank.ID})
	onCash := s.create(transaction.Draft{Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.cash.ID})
	pocket := s.seed.Account(s.T(), s.seed.Child, "Pocket", "0")

	got, err := s.svc.List(s.ctx, s.actor, ledger.Query{Dashboard: true, AccountIDs: []uuid.UUID{s.cash.ID}})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{onCash.ID}, ids(got))

	got, err = s.svc.List(s.ctx, s.actor, ledger.Query{Dashboard: true, AccountIDs: []uuid.UUID{pocket.ID}})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *LedgerTestSuite) TestListDateBoundsAreWholeDays() {
	early := s.create(transaction.Draft{
		Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.bank.ID, Date: day(2024, 6, 1, 0),
	})
	late := s.create(transaction.Draft{
		Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.bank.ID, Date: day(2024, 6, 3, 23),
	})
	s.create(transaction.Draft{
		Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.bank.ID, Date: day(2024, 6, 4, 0),
	})

	from, to := day(2024, 6, 1, 15), day(2024, 6, 3, 1)
	got, err := s.svc.List(s.ctx, s.actor, ledger.Query{From: &from, To: &to})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{late.ID, early.ID}, ids(got))
}

func (s *LedgerTestSuite) TestListAccountMatchesEitherSide() {
	in := s.create(transaction.Draft{
		Type: transaction.TypeTransfer, Amount: dec("1"), AccountID: &s.bank.ID, ToAccountID: &s.cash.ID,
		Date: day(2024, 1, 2, 0),
	})
	out := s.create(transaction.Draft{
		Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.cash.ID, Date: day(2024, 1, 3, 0),
	})
	s.create(transaction.Draft{Type: transaction.TypeExpense, Amount: dec("1"), AccountID: &s.bank.ID})

	got, err := s.svc.List(s.ctx, s.actor, ledger.Query{AccountID: &s.cash.ID})
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{in.ID, out.ID}, ids(got))

	got, err = s.svc.List(s.ctx, s.actor, ledger.Query{
		AccountID: &s.cash.ID, Types: []transaction.Type{transaction.TypeTransfer},
	})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{in.ID}, ids(got))
}
