// Package account provides account management: creation with a starting
// balance, descriptive edits, listing with role visibility, and guarded delete.
//
// Balances are never written here after creation. The ledger, reconciliation
// and recalculation are the only balance writers.
package account

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides account operations for family members.
type Service struct {
	uow    repository.UnitOfWork
	cache  cache.AccountCache
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	c := deps.AccountCache
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{uow: deps.Uow, cache: c, logger: deps.Logger}
}

// Draft is the input for a new account. A nil UserID means the caller.
type Draft struct {
	UserID    *uuid.UUID
	Name      string
	Type      account.Type
	Balance   decimal.Decimal
	Color     string
	Icon      string
	AccountNo string
}

// CreateAccount creates an account with its starting balance. A child may only
// create accounts for themselves; a parent for anyone in the family.
func (s *Service) CreateAccount(ctx context.Context, actor user.Actor, d Draft) (a *account.Account, err error) {
	log := s.logger.With("operation", "CreateAccount", "user_id", actor.UserID)
	log.Debug("CreateAccount started", "name", d.Name)

	owner := actor.UserID
	if d.UserID != nil && *d.UserID != uuid.Nil {
		owner = *d.UserID
	}
	if owner != actor.UserID && !actor.IsParent() {
		log.Error("CreateAccount failed", "error", user.ErrParentOnly)
		return nil, user.ErrParentOnly
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.GetInFamily(ctx, owner, actor.FamilyID); err != nil {
			return err
		}
		b := account.New().
			WithUserID(owner).
			WithName(d.Name).
			WithBalance(d.Balance).
			WithIcon(d.Icon).
			WithAccountNo(d.AccountNo)
		if d.Type != "" {
			b = b.WithType(d.Type)
		}
		if d.Color != "" {
			b = b.WithColor(d.Color)
		}
		a, err = b.Build()
		if err != nil {
			return err
		}
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		log.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	s.invalidate(ctx, actor.FamilyID)
	log.Info("CreateAccount successful", "account_id", a.ID, "balance", a.Balance)
	return a, nil
}

// ListAccounts returns the family's accounts ordered by creation time. A child
// sees only their own; a parent may narrow to one owner with ownerID.
func (s *Service) ListAccounts(
	ctx context.Context,
	actor user.Actor,
	ownerID *uuid.UUID,
) ([]*account.Account, error) {
	all, err := s.familyAccounts(ctx, actor.FamilyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsParent() {
		ownerID = &actor.UserID
	}
	if ownerID == nil {
		return all, nil
	}
	out := make([]*account.Account, 0, len(all))
	for _, a := range all {
		if a.UserID == *ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) familyAccounts(ctx context.Context, familyID uuid.UUID) ([]*account.Account, error) {
	if cached, ok, err := s.cache.Get(ctx, familyID); err != nil {
		s.logger.Warn("account cache read failed", "family_id", familyID, "error", err)
	} else if ok {
		return cached, nil
	}

	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	list, err := repo.List(ctx, repository.AccountFilter{FamilyID: familyID})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, familyID, list); err != nil {
		s.logger.Warn("account cache write failed", "family_id", familyID, "error", err)
	}
	return list, nil
}

// GetAccount returns an account visible to actor.
func (s *Service) GetAccount(ctx context.Context, actor user.Actor, id uuid.UUID) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return visible(ctx, repo, actor, id)
}

func visible(ctx context.Context, repo repository.AccountRepository, actor user.Actor, id uuid.UUID) (*account.Account, error) {
	a, err := repo.GetInFamily(ctx, id, actor.FamilyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsParent() && a.UserID != actor.UserID {
		return nil, account.ErrAccountNotFound
	}
	return a, nil
}

// UpdateAccount edits descriptive fields. The balance is not writable.
func (s *Service) UpdateAccount(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	p account.Patch,
) (a *account.Account, err error) {
	log := s.logger.With("operation", "UpdateAccount", "account_id", id, "user_id", actor.UserID)
	log.Debug("UpdateAccount started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = visible(ctx, repo, actor, id)
		if err != nil {
			return err
		}
		if err := a.Apply(p); err != nil {
			return err
		}
		return repo.Update(ctx, a)
	})
	if err != nil {
		log.Error("UpdateAccount failed", "error", err)
		return nil, err
	}
	s.invalidate(ctx, actor.FamilyID)
	log.Info("UpdateAccount successful")
	return a, nil
}

// DeleteAccount removes an account no ledger row references. Referenced
// accounts are archived instead.
func (s *Service) DeleteAccount(ctx context.Context, actor user.Actor, id uuid.UUID) (err error) {
	log := s.logger.With("operation", "DeleteAccount", "account_id", id, "user_id", actor.UserID)
	log.Debug("DeleteAccount started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if _, err := visible(ctx, repo, actor, id); err != nil {
			return err
		}
		n, err := repo.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return account.ErrAccountInUse
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error("DeleteAccount failed", "error", err)
		return err
	}
	s.invalidate(ctx, actor.FamilyID)
	log.Info("DeleteAccount successful")
	return nil
}

func (s *Service) invalidate(ctx context.Context, familyID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, familyID); err != nil {
		s.logger.Warn("account cache invalidation failed", "family_id", familyID, "error", err)
	}
}
