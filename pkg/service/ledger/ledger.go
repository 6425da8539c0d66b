// Package ledger is the balance mutation engine. Every operation writes the
// transaction row and the account balance movements it implies inside one unit
// of work, so either both commit or neither does.
package ledger

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides transaction create, transition, update and delete with
// their balance effects, plus bulk recalculation and filtered listing.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a ledger Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// Create inserts a transaction for actor. A completed transaction moves its
// accounts' balances; a planned one moves nothing.
func (s *Service) Create(
	ctx context.Context,
	actor user.Actor,
	d transaction.Draft,
) (t *transaction.Transaction, err error) {
	log := s.logger.With("operation", "CreateTransaction", "user_id", actor.UserID)
	log.Debug("CreateTransaction started", "type", d.Type, "status", d.Status)

	d.CreatedByID = actor.UserID
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		t, err = transaction.New(d)
		if err != nil {
			return err
		}
		if err := checkRefs(ctx, uow, actor.FamilyID, t); err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err := txs.Create(ctx, t); err != nil {
			return err
		}
		return applyDeltas(ctx, uow, t.Deltas())
	})
	if err != nil {
		log.Error("CreateTransaction failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, s.logger, &events.TransactionCreatedEvent{
		Ledger:        events.NewLedger(actor.FamilyID, actor.UserID, touched(t.Deltas())...),
		TransactionID: t.ID,
		Kind:          string(t.Type),
		Status:        string(t.Status),
		Amount:        t.Amount,
	})
	log.Info("CreateTransaction successful", "transaction_id", t.ID, "status", t.Status)
	return t, nil
}

// Get returns a transaction of actor's family.
func (s *Service) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*transaction.Transaction, error) {
	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return txs.GetInFamily(ctx, id, actor.FamilyID)
}

// Complete moves a planned transaction to completed and applies its balance
// movements, resolving each field from c first and the stored row second.
func (s *Service) Complete(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	c transaction.Completion,
) (*transaction.Transaction, error) {
	return s.Patch(ctx, actor, id, Change{Completion: c, Complete: true})
}

// Update applies a standard update. It never moves a balance.
func (s *Service) Update(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	p transaction.Patch,
) (*transaction.Transaction, error) {
	return s.Patch(ctx, actor, id, Change{Patch: p})
}

// Change is one PATCH of a transaction. With Complete set and a planned
// transaction it is the planned to completed transition; otherwise it is a
// standard update and Completion is ignored.
type Change struct {
	transaction.Patch
	Completion transaction.Completion
	Complete   bool
}

// Patch applies ch to the transaction id.
func (s *Service) Patch(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	ch Change,
) (t *transaction.Transaction, err error) {
	log := s.logger.With("operation", "PatchTransaction", "transaction_id", id, "user_id", actor.UserID)
	log.Debug("PatchTransaction started", "complete", ch.Complete)

	var transitioned bool
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		t, err = txs.GetInFamilyForUpdate(ctx, id, actor.FamilyID)
		if err != nil {
			return err
		}
		from := t.Status

		p := ch.Patch
		if ch.Complete && t.Status == transaction.StatusPlanned {
			if err := t.Complete(ch.Completion); err != nil {
				return err
			}
			transitioned = true
			p.Status, p.Description, p.Date = nil, nil, nil
		} else if ch.Complete {
			completed := transaction.StatusCompleted
			p.Status = &completed
		}
		if err := t.Apply(p); err != nil {
			return err
		}
		if err := checkRefs(ctx, uow, actor.FamilyID, t); err != nil {
			return err
		}
		if err := txs.Update(ctx, t, from); err != nil {
			return err
		}
		if transitioned {
			return applyDeltas(ctx, uow, t.Deltas())
		}
		return nil
	})
	if err != nil {
		log.Error("PatchTransaction failed", "error", err)
		return nil, err
	}

	if transitioned {
		eventbus.Publish(ctx, s.bus, s.logger, &events.TransactionCompletedEvent{
			Ledger:        events.NewLedger(actor.FamilyID, actor.UserID, touched(t.Deltas())...),
			TransactionID: t.ID,
			Amount:        t.Amount,
			Fee:           t.Fee,
		})
		log.Info("Transaction completed", "amount", t.Amount, "fee", t.Fee)
	} else {
		eventbus.Publish(ctx, s.bus, s.logger, &events.TransactionUpdatedEvent{
			Ledger:        events.NewLedger(actor.FamilyID, actor.UserID),
			TransactionID: t.ID,
		})
		log.Info("Transaction updated", "status", t.Status)
	}
	return t, nil
}

// Delete removes a transaction. A completed one first has its balance
// movements reverted exactly; planned and void ones never moved anything.
func (s *Service) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) (err error) {
	log := s.logger.With("operation", "DeleteTransaction", "transaction_id", id, "user_id", actor.UserID)
	log.Debug("DeleteTransaction started")

	var reverted []transaction.Delta
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		t, err := txs.GetInFamilyForUpdate(ctx, id, actor.FamilyID)
		if err != nil {
			return err
		}
		reverted = transaction.Inverse(t.Deltas())
		if err := txs.Delete(ctx, t.ID, t.Status); err != nil {
			return err
		}
		return applyDeltas(ctx, uow, reverted)
	})
	if err != nil {
		log.Error("DeleteTransaction failed", "error", err)
		return err
	}

	eventbus.Publish(ctx, s.bus, s.logger, &events.TransactionDeletedEvent{
		Ledger:        events.NewLedger(actor.FamilyID, actor.UserID, touched(reverted)...),
		TransactionID: id,
		Reverted:      len(reverted) > 0,
	})
	log.Info("DeleteTransaction successful", "reverted", len(reverted) > 0)
	return nil
}

// applyDeltas moves each balance with one atomic increment. A missing account
// fails the whole unit of work.
func applyDeltas(ctx context.Context, uow repository.UnitOfWork, ds []transaction.Delta) error {
	if len(ds) == 0 {
		return nil
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	for _, d := range ds {
		if err := accounts.AdjustBalance(ctx, d.AccountID, d.Amount); err != nil {
			return err
		}
	}
	return nil
}

// checkRefs verifies that every account, category and budget t points at
// exists and is visible to the family.
func checkRefs(ctx context.Context, uow repository.UnitOfWork, familyID uuid.UUID, t *transaction.Transaction) error {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	for _, id := range []*uuid.UUID{t.AccountID, t.ToAccountID} {
		if id == nil {
			continue
		}
		if _, err := accounts.GetInFamily(ctx, *id, familyID); err != nil {
			return err
		}
	}
	if t.CategoryID != nil {
		categories, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		if _, err := categories.Get(ctx, *t.CategoryID); err != nil {
			return err
		}
	}
	if t.BudgetID != nil {
		budgets, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := budgets.GetInFamily(ctx, *t.BudgetID, familyID)
		if err != nil {
			return err
		}
		if b.Status == budget.StatusArchived && t.Status == transaction.StatusPlanned {
			return budget.ErrArchived
		}
	}
	return nil
}

func touched(ds []transaction.Delta) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.AccountID)
	}
	return out
}

// AccountBalance is the recalculation result for one account.
type AccountBalance struct {
	AccountID  uuid.UUID       `json:"accountId"`
	Name       string          `json:"name"`
	Previous   decimal.Decimal `json:"previous"`
	Recomputed decimal.Decimal `json:"recomputed"`
}

// Drift is how far the stored balance was from the recomputed one.
func (b AccountBalance) Drift() decimal.Decimal {
	return b.Previous.Sub(b.Recomputed)
}

// RecalcReport lists every account and how many had drifted.
type RecalcReport struct {
	Accounts []AccountBalance `json:"accounts"`
	Drifted  int              `json:"drifted"`
}

// Recalculate recomputes every account balance from its completed transactions
// and overwrites the stored value. Reconciliation history is not an input, so
// any reconciled balance is replaced; the report's drift shows where.
func (s *Service) Recalculate(ctx context.Context) (report *RecalcReport, err error) {
	log := s.logger.With("operation", "RecalculateBalances")
	log.Debug("RecalculateBalances started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		all, err := accounts.ListAll(ctx)
		if err != nil {
			return err
		}

		totals := make(map[uuid.UUID]decimal.Decimal, len(all))
		if err := txs.EachCompleted(ctx, 500, func(batch []*transaction.Transaction) error {
			for id, v := range transaction.Balances(batch) {
				totals[id] = totals[id].Add(v)
			}
			return nil
		}); err != nil {
			return err
		}

		report = &RecalcReport{Accounts: make([]AccountBalance, 0, len(all))}
		for _, a := range all {
			res := AccountBalance{AccountID: a.ID, Name: a.Name, Previous: a.Balance, Recomputed: totals[a.ID].Round(2)}
			if err := accounts.SetBalance(ctx, a.ID, res.Recomputed); err != nil {
				return err
			}
			if !res.Drift().IsZero() {
				report.Drifted++
				log.Warn("Balance drift corrected", "account_id", a.ID, "previous", res.Previous, "recomputed", res.Recomputed)
			}
			report.Accounts = append(report.Accounts, res)
		}
		return nil
	})
	if err != nil {
		log.Error("RecalculateBalances failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, s.logger, &events.BalancesRecalculatedEvent{
		Ledger:       events.NewLedger(uuid.Nil, uuid.Nil),
		AccountCount: len(report.Accounts),
		Drifted:      report.Drifted,
	})
	log.Info("RecalculateBalances successful", "accounts", len(report.Accounts), "drifted", report.Drifted)
	return report, nil
}

