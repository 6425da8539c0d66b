// Package user provides family member management.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
)

// DefaultColor is used for members created without a color.
const DefaultColor = "#000000"

var (
	// ErrSelfDelete is returned when a member tries to delete themselves.
	ErrSelfDelete = domain.NewKind(domain.ErrValidation, "you cannot delete yourself")
	// ErrHasAccounts is returned when deleting a member who still owns accounts.
	ErrHasAccounts = domain.NewKind(domain.ErrConflict, "user still owns accounts")
)

// Service provides business logic for family members.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		logger: logger,
	}
}

// Draft is the input for a new member.
type Draft struct {
	Name     string
	Role     user.Role
	Password string
	Color    string
	Avatar   string
}

// Patch holds the editable member fields.
type Patch struct {
	Name     *string
	Role     *user.Role
	Color    *string
	Avatar   *string
	Password *string
}

// CreateUser adds a member to the caller's family. New members are children
// unless a role is given. Only parents may add members.
func (s *Service) CreateUser(
	ctx context.Context,
	actor user.Actor,
	d Draft,
) (u *user.User, err error) {
	log := s.logger.With("operation", "CreateUser", "user_id", actor.UserID)
	log.Debug("CreateUser started", "name", d.Name)

	if !actor.IsParent() {
		return nil, user.ErrParentOnly
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = user.NewUser(actor.FamilyID, d.Name, d.Role, d.Password)
		if err != nil {
			return err
		}
		u.Color = d.Color
		if u.Color == "" {
			u.Color = DefaultColor
		}
		u.Avatar = d.Avatar
		return repo.Create(ctx, u)
	})
	if err != nil {
		log.Error("CreateUser failed", "error", err)
		return nil, err
	}
	log.Info("CreateUser successful", "new_user_id", u.ID, "role", u.Role)
	return u, nil
}

// GetUser returns a member of the caller's family.
func (s *Service) GetUser(ctx context.Context, actor user.Actor, id uuid.UUID) (*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return repo.GetInFamily(ctx, id, actor.FamilyID)
}

// ListUsers returns every member of the caller's family.
func (s *Service) ListUsers(ctx context.Context, actor user.Actor) ([]*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, actor.FamilyID)
}

// UpdateUser edits a member. A member may edit themselves; a parent may edit
// anyone in the family. Only a parent may change a role.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	p Patch,
) (u *user.User, err error) {
	log := s.logger.With("operation", "UpdateUser", "target_id", id, "user_id", actor.UserID)
	log.Debug("UpdateUser started")

	if (id != actor.UserID || p.Role != nil) && !actor.IsParent() {
		return nil, user.ErrParentOnly
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.GetInFamily(ctx, id, actor.FamilyID)
		if err != nil {
			return err
		}
		if p.Name != nil {
			if *p.Name == "" {
				return user.ErrNameRequired
			}
			u.Name = *p.Name
		}
		if p.Role != nil {
			if !p.Role.Valid() {
				return user.ErrInvalidRole
			}
			u.Role = *p.Role
		}
		if p.Color != nil {
			u.Color = *p.Color
		}
		if p.Avatar != nil {
			u.Avatar = *p.Avatar
		}
		if p.Password != nil {
			if err := u.SetPassword(*p.Password); err != nil {
				return err
			}
		}
		u.UpdatedAt = time.Now().UTC()
		return repo.Update(ctx, u)
	})
	if err != nil {
		log.Error("UpdateUser failed", "error", err)
		return nil, err
	}
	log.Info("UpdateUser successful")
	return u, nil
}

// DeleteUser removes a member who owns no accounts. Parents only.
func (s *Service) DeleteUser(ctx context.Context, actor user.Actor, id uuid.UUID) (err error) {
	log := s.logger.With("operation", "DeleteUser", "target_id", id, "user_id", actor.UserID)
	log.Debug("DeleteUser started")

	if !actor.IsParent() {
		return user.ErrParentOnly
	}
	if id == actor.UserID {
		return ErrSelfDelete
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetInFamily(ctx, id, actor.FamilyID); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		owned, err := accounts.List(ctx, repository.AccountFilter{FamilyID: actor.FamilyID, UserIDs: []uuid.UUID{id}})
		if err != nil {
			return err
		}
		if len(owned) > 0 {
			return ErrHasAccounts
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error("DeleteUser failed", "error", err)
		return err
	}
	log.Info("DeleteUser successful")
	return nil
}

// SetMissingPasswords gives every member without a password one from next,
// which is asked for each member in turn. It returns how many were set.
func (s *Service) SetMissingPasswords(
	ctx context.Context,
	next func(u *user.User) (string, error),
) (n int, err error) {
	log := s.logger.With("operation", "SetMissingPasswords")
	repo, err := s.uow.UserRepository()
	if err != nil {
		return 0, err
	}
	users, err := repo.ListWithoutPassword(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		password, err := next(u)
		if err != nil {
			return n, err
		}
		if password == "" {
			log.Info("Skipped user", "name", u.Name)
			continue
		}
		if err := u.SetPassword(password); err != nil {
			return n, err
		}
		if err := repo.Update(ctx, u); err != nil {
			return n, err
		}
		n++
		log.Info("Password set", "name", u.Name)
	}
	return n, nil
}
