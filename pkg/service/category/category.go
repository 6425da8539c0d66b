// Package category manages category groups and the categories in them.
package category

import (
	"context"
	"log/slog"

	"github.com/fammee/finance/pkg/domain/category"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
)

// Service provides category and group operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a category Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Catalog is every group, ordered by type, and every category, ordered by name.
type Catalog struct {
	Groups     []*category.Group    `json:"groups"`
	Categories []*category.Category `json:"categories"`
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) (*Catalog, error) {
	repo, err := s.uow.CategoryRepository()
	if err != nil {
		return nil, err
	}
	groups, err := repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{Groups: groups, Categories: categories}, nil
}

// CreateGroup creates a custom group.
func (s *Service) CreateGroup(ctx context.Context, name string, typ transaction.Type) (*category.Group, error) {
	g, err := category.NewGroup(name, typ)
	if err != nil {
		return nil, err
	}
	repo, err := s.uow.CategoryRepository()
	if err != nil {
		return nil, err
	}
	if err := repo.CreateGroup(ctx, g); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, err
	}
	s.logger.Info("Group created", "group_id", g.ID, "type", g.Type)
	return g, nil
}

// RenameGroup changes a group's name.
func (s *Service) RenameGroup(ctx context.Context, id uuid.UUID, name string) (g *category.Group, err error) {
	if name == "" {
		return nil, category.ErrNameRequired
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		g, err = repo.GetGroup(ctx, id)
		if err != nil {
			return err
		}
		g.Name = name
		return repo.UpdateGroup(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGroup deletes a group and all its categories together. It refuses
// while any of those categories labels a transaction.
func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) (err error) {
	log := s.logger.With("operation", "DeleteGroup", "group_id", id)
	log.Debug("DeleteGroup started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetGroup(ctx, id); err != nil {
			return err
		}
		members, err := repo.ListByGroup(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(members))
		for _, c := range members {
			ids = append(ids, c.ID)
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		n, err := txs.CountByCategories(ctx, ids...)
		if err != nil {
			return err
		}
		if n > 0 {
			return category.GroupInUse(n)
		}
		if err := repo.DeleteByGroup(ctx, id); err != nil {
			return err
		}
		return repo.DeleteGroup(ctx, id)
	})
	if err != nil {
		log.Error("DeleteGroup failed", "error", err)
		return err
	}
	log.Info("DeleteGroup successful")
	return nil
}

// CreateCategory adds a category to an existing group. A private category
// belongs to the caller.
func (s *Service) CreateCategory(
	ctx context.Context,
	actor user.Actor,
	name string,
	groupID uuid.UUID,
	private bool,
) (c *category.Category, err error) {
	var owner *uuid.UUID
	if private {
		owner = &actor.UserID
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		c, err = category.New(name, groupID, owner)
		if err != nil {
			return err
		}
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		if _, err := repo.GetGroup(ctx, groupID); err != nil {
			return err
		}
		return repo.Create(ctx, c)
	})
	if err != nil {
		s.logger.Error("CreateCategory failed", "error", err)
		return nil, err
	}
	s.logger.Info("Category created", "category_id", c.ID, "group_id", groupID)
	return c, nil
}

// UpdateCategory renames a category or moves it to another group.
func (s *Service) UpdateCategory(
	ctx context.Context,
	id uuid.UUID,
	name *string,
	groupID *uuid.UUID,
) (c *category.Category, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		c, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := c.Rename(name, groupID); err != nil {
			return err
		}
		if groupID != nil {
			if _, err := repo.GetGroup(ctx, *groupID); err != nil {
				return err
			}
		}
		return repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory deletes a category no transaction uses.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (err error) {
	log := s.logger.With("operation", "DeleteCategory", "category_id", id)
	log.Debug("DeleteCategory started")

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CategoryRepository()
		if err != nil {
			return err
		}
		if _, err := repo.Get(ctx, id); err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		n, err := txs.CountByCategories(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return category.InUse(n)
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error("DeleteCategory failed", "error", err)
		return err
	}
	log.Info("DeleteCategory successful")
	return nil
}
