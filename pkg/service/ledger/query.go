package ledger

import (
	"context"
	"time"

	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
)

// Query filters a transaction listing. Empty fields do not filter.
type Query struct {
	// Dashboard restricts the result to the source accounts of UserIDs. Only a
	// parent may name other users; an empty UserIDs means the caller's own.
	Dashboard bool
	UserIDs   []uuid.UUID
	// AccountIDs further narrows the dashboard account set.
	AccountIDs []uuid.UUID
	// AccountID matches either side of a transfer.
	AccountID   *uuid.UUID
	BudgetID    *uuid.UUID
	Types       []transaction.Type
	Statuses    []transaction.Status
	CategoryIDs []uuid.UUID
	// From and To are calendar days, both inclusive.
	From  *time.Time
	To    *time.Time
	Limit int
}

// List returns the family's transactions matching q, newest first. A child
// only ever sees transactions booked on their own accounts.
func (s *Service) List(ctx context.Context, actor user.Actor, q Query) ([]*transaction.Transaction, error) {
	f := repository.TransactionFilter{
		FamilyID:    actor.FamilyID,
		AccountID:   q.AccountID,
		BudgetID:    q.BudgetID,
		Types:       q.Types,
		Statuses:    q.Statuses,
		CategoryIDs: q.CategoryIDs,
		Limit:       q.Limit,
	}
	if q.From != nil {
		from := startOfDay(*q.From)
		f.From = &from
	}
	if q.To != nil {
		to := startOfDay(*q.To).Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}

	if q.Dashboard || !actor.IsParent() {
		ids, err := s.visibleAccounts(ctx, actor, q)
		if err != nil {
			return nil, err
		}
		f.SourceAccountIDs = ids
	}

	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return txs.List(ctx, f)
}

// visibleAccounts resolves the account ids a scoped listing may show. The
// result is never nil, so an empty set filters out everything.
func (s *Service) visibleAccounts(ctx context.Context, actor user.Actor, q Query) ([]uuid.UUID, error) {
	owners := []uuid.UUID{actor.UserID}
	if actor.IsParent() && len(q.UserIDs) > 0 {
		owners = q.UserIDs
	}
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	list, err := accounts.List(ctx, repository.AccountFilter{FamilyID: actor.FamilyID, UserIDs: owners})
	if err != nil {
		return nil, err
	}

	wanted := make(map[uuid.UUID]bool, len(q.AccountIDs))
	for _, id := range q.AccountIDs {
		wanted[id] = true
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, a := range list {
		if len(wanted) == 0 || wanted[a.ID] {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
