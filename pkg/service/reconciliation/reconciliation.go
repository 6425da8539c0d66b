// Package reconciliation records manual balance corrections.
package reconciliation

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
)

// Service sets account balances to observed values and keeps the audit trail.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a reconciliation Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// Reconcile sets the account's balance to req.NewBalance and appends the
// correction to its history. The account row stays locked from the read of the
// previous balance until the write, so no concurrent change slips in between.
// Reconciling to the current balance still records a row with zero difference.
func (s *Service) Reconcile(
	ctx context.Context,
	actor user.Actor,
	req reconciliation.Request,
) (rec *reconciliation.Reconciliation, err error) {
	log := s.logger.With("operation", "Reconcile", "account_id", req.AccountID, "user_id", actor.UserID)
	log.Debug("Reconcile started")

	if err = req.Validate(); err != nil {
		log.Error("Reconcile failed", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := accounts.GetInFamily(ctx, req.AccountID, actor.FamilyID); err != nil {
			return err
		}
		if _, err := users.GetInFamily(ctx, req.PerformedByID, actor.FamilyID); err != nil {
			return err
		}
		a, err := accounts.GetForUpdate(ctx, req.AccountID)
		if err != nil {
			return err
		}

		rec, err = reconciliation.New(req, a.Balance)
		if err != nil {
			return err
		}
		recs, err := uow.ReconciliationRepository()
		if err != nil {
			return err
		}
		if err := recs.Create(ctx, rec); err != nil {
			return err
		}
		return accounts.SetBalance(ctx, a.ID, rec.NewBalance)
	})
	if err != nil {
		log.Error("Reconcile failed", "error", err)
		return nil, err
	}

	eventbus.Publish(ctx, s.bus, s.logger, &events.AccountReconciledEvent{
		Ledger:           events.NewLedger(actor.FamilyID, actor.UserID, rec.AccountID),
		ReconciliationID: rec.ID,
		Difference:       rec.Difference,
	})
	log.Info("Reconcile successful",
		"reconciliation_id", rec.ID,
		"previous", rec.PreviousBalance,
		"new", rec.NewBalance,
		"difference", rec.Difference)
	return rec, nil
}

// ListByAccount returns the account's reconciliation history, newest first.
func (s *Service) ListByAccount(
	ctx context.Context,
	actor user.Actor,
	accountID uuid.UUID,
) ([]*reconciliation.Reconciliation, error) {
	if accountID == uuid.Nil {
		return nil, reconciliation.ErrAccountRequired
	}
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if _, err := accounts.GetInFamily(ctx, accountID, actor.FamilyID); err != nil {
		return nil, err
	}
	recs, err := s.uow.ReconciliationRepository()
	if err != nil {
		return nil, err
	}
	return recs.ListByAccount(ctx, accountID)
}
