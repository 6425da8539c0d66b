// Package budget provides budget planning: budgets, their planned items and
// the item lifecycle pending -> done | cancelled.
package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/events"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/fammee/finance/pkg/repository"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service manages budgets. Item balance effects go through the ledger.
type Service struct {
	uow    repository.UnitOfWork
	ledger *ledger.Service
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a budget Service.
func New(
	uow repository.UnitOfWork,
	ledger *ledger.Service,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, ledger: ledger, bus: bus, logger: logger}
}

// Overview is a budget with its items and their totals.
type Overview struct {
	*budget.Budget
	Items   []budget.ItemView `json:"items"`
	Summary budget.Summary    `json:"summary"`
}

// Create creates an active budget. An empty creator means the caller; any
// other creator must belong to the caller's family.
func (s *Service) Create(ctx context.Context, actor user.Actor, d budget.Draft) (b *budget.Budget, err error) {
	log := s.logger.With("operation", "CreateBudget", "user_id", actor.UserID)
	log.Debug("CreateBudget started", "title", d.Title)

	if d.CreatedByID == uuid.Nil {
		d.CreatedByID = actor.UserID
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.GetInFamily(ctx, d.CreatedByID, actor.FamilyID); err != nil {
			return err
		}
		b, err = budget.New(d)
		if err != nil {
			return err
		}
		budgets, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		return budgets.Create(ctx, b)
	})
	if err != nil {
		log.Error("CreateBudget failed", "error", err)
		return nil, err
	}
	log.Info("CreateBudget successful", "budget_id", b.ID)
	return b, nil
}

// List returns the family's non-archived budgets with their items.
func (s *Service) List(ctx context.Context, actor user.Actor) ([]*Overview, error) {
	budgets, err := s.uow.BudgetRepository()
	if err != nil {
		return nil, err
	}
	list, err := budgets.ListActive(ctx, actor.FamilyID)
	if err != nil {
		return nil, err
	}
	out := make([]*Overview, 0, len(list))
	for _, b := range list {
		o, err := s.overview(ctx, actor, b)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Get returns one budget of the family, archived or not, with its items.
func (s *Service) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*Overview, error) {
	budgets, err := s.uow.BudgetRepository()
	if err != nil {
		return nil, err
	}
	b, err := budgets.GetInFamily(ctx, id, actor.FamilyID)
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, actor, b)
}

func (s *Service) overview(ctx context.Context, actor user.Actor, b *budget.Budget) (*Overview, error) {
	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	list, err := txs.List(ctx, repository.TransactionFilter{FamilyID: actor.FamilyID, BudgetID: &b.ID})
	if err != nil {
		return nil, err
	}
	items := make([]budget.ItemView, 0, len(list))
	for _, t := range list {
		items = append(items, budget.Item(t))
	}
	return &Overview{Budget: b, Items: items, Summary: budget.Summarize(b.Limit, items)}, nil
}

// Update edits the descriptive fields of a budget. Only its creator may.
func (s *Service) Update(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	p budget.Patch,
) (b *budget.Budget, err error) {
	log := s.logger.With("operation", "UpdateBudget", "budget_id", id, "user_id", actor.UserID)
	log.Debug("UpdateBudget started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		budgets, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err = budgets.GetInFamily(ctx, id, actor.FamilyID)
		if err != nil {
			return err
		}
		if err := b.Apply(actor.UserID, p); err != nil {
			return err
		}
		return budgets.Update(ctx, b)
	})
	if err != nil {
		log.Error("UpdateBudget failed", "error", err)
		return nil, err
	}
	log.Info("UpdateBudget successful")
	return b, nil
}

// Archive soft-deletes a budget: it is archived and its pending items are
// voided in the same unit of work. Done items keep their balance effects.
func (s *Service) Archive(ctx context.Context, actor user.Actor, id uuid.UUID) (voided int64, err error) {
	log := s.logger.With("operation", "ArchiveBudget", "budget_id", id, "user_id", actor.UserID)
	log.Debug("ArchiveBudget started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		budgets, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		b, err := budgets.GetInFamily(ctx, id, actor.FamilyID)
		if err != nil {
			return err
		}
		b.Archive()
		if err := budgets.Update(ctx, b); err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		voided, err = txs.VoidPlannedByBudget(ctx, id)
		return err
	})
	if err != nil {
		log.Error("ArchiveBudget failed", "error", err)
		return 0, err
	}

	eventbus.Publish(ctx, s.bus, s.logger, &events.BudgetArchivedEvent{
		Ledger:      events.NewLedger(actor.FamilyID, actor.UserID),
		BudgetID:    id,
		VoidedItems: voided,
	})
	log.Info("ArchiveBudget successful", "voided_items", voided)
	return voided, nil
}

// ItemDraft is a new planned item.
type ItemDraft struct {
	Name        string
	Amount      decimal.Decimal
	Type        transaction.Type
	Date        time.Time
	Tags        []string
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	ToAccountID *uuid.UUID
}

// AddItem plans a new item. It moves no balance until completed.
func (s *Service) AddItem(
	ctx context.Context,
	actor user.Actor,
	budgetID uuid.UUID,
	d ItemDraft,
) (budget.ItemView, error) {
	if d.Type == "" {
		d.Type = transaction.TypeExpense
	}
	t, err := s.ledger.Create(ctx, actor, transaction.Draft{
		Type:        d.Type,
		Status:      transaction.StatusPlanned,
		Amount:      d.Amount,
		Date:        d.Date,
		Description: d.Name,
		Tags:        d.Tags,
		CategoryID:  d.CategoryID,
		AccountID:   d.AccountID,
		ToAccountID: d.ToAccountID,
		BudgetID:    &budgetID,
	})
	if err != nil {
		return budget.ItemView{}, err
	}
	return budget.Item(t), nil
}

// CompleteItem books a pending item with its actual amount and accounts.
func (s *Service) CompleteItem(
	ctx context.Context,
	actor user.Actor,
	budgetID, itemID uuid.UUID,
	c transaction.Completion,
) (budget.ItemView, error) {
	if err := s.checkItem(ctx, actor, budgetID, itemID); err != nil {
		return budget.ItemView{}, err
	}
	t, err := s.ledger.Complete(ctx, actor, itemID, c)
	if err != nil {
		return budget.ItemView{}, err
	}
	return budget.Item(t), nil
}

// CancelItem voids a pending item.
func (s *Service) CancelItem(ctx context.Context, actor user.Actor, budgetID, itemID uuid.UUID) (budget.ItemView, error) {
	cancelled := transaction.ItemCancelled
	return s.UpdateItem(ctx, actor, budgetID, itemID, ItemPatch{Status: &cancelled})
}

// ItemPatch edits an item. Status moves pending to cancelled or done; nothing
// returns to pending.
type ItemPatch struct {
	Name       *string
	PlanAmount *decimal.Decimal
	CategoryID *uuid.UUID
	Date       *time.Time
	Tags       []string
	Note       *string
	Status     *transaction.ItemStatus
}

// UpdateItem renames or re-plans an item, or changes its state.
func (s *Service) UpdateItem(
	ctx context.Context,
	actor user.Actor,
	budgetID, itemID uuid.UUID,
	p ItemPatch,
) (budget.ItemView, error) {
	current, err := s.item(ctx, actor, budgetID, itemID)
	if err != nil {
		return budget.ItemView{}, err
	}

	ch := ledger.Change{Patch: transaction.Patch{
		Description: p.Name,
		PlanAmount:  p.PlanAmount,
		CategoryID:  p.CategoryID,
		Date:        p.Date,
		Tags:        p.Tags,
		Note:        p.Note,
	}}
	if p.Status != nil && *p.Status != current.Status.ItemStatus() {
		switch *p.Status {
		case transaction.ItemPending:
			if current.Status == transaction.StatusVoid {
				return budget.ItemView{}, budget.ErrReactivate
			}
			return budget.ItemView{}, transaction.ErrStatusChange
		case transaction.ItemCancelled:
			void := transaction.StatusVoid
			ch.Status = &void
		case transaction.ItemDone:
			ch.Complete = true
			ch.Completion = transaction.Completion{Amount: p.PlanAmount, Description: p.Name, Date: p.Date}
		default:
			return budget.ItemView{}, transaction.ErrInvalidStatus
		}
	}

	t, err := s.ledger.Patch(ctx, actor, itemID, ch)
	if err != nil {
		return budget.ItemView{}, err
	}
	return budget.Item(t), nil
}

// DeleteItem removes an item, reverting its balance effect if it was done.
func (s *Service) DeleteItem(ctx context.Context, actor user.Actor, budgetID, itemID uuid.UUID) error {
	if err := s.checkItem(ctx, actor, budgetID, itemID); err != nil {
		return err
	}
	return s.ledger.Delete(ctx, actor, itemID)
}

func (s *Service) checkItem(ctx context.Context, actor user.Actor, budgetID, itemID uuid.UUID) error {
	_, err := s.item(ctx, actor, budgetID, itemID)
	return err
}

func (s *Service) item(
	ctx context.Context,
	actor user.Actor,
	budgetID, itemID uuid.UUID,
) (*transaction.Transaction, error) {
	t, err := s.ledger.Get(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	if t.BudgetID == nil || *t.BudgetID != budgetID {
		return nil, budget.ErrNotItem
	}
	return t, nil
}
