package repository

import (
	"context"
	"errors"

	"github.com/fammee/finance/pkg/domain/category"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository bound to db.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) CreateGroup(ctx context.Context, g *category.Group) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(toGroupModel(g)).Error
	})
}

func (r *categoryRepository) GetGroup(ctx context.Context, id uuid.UUID) (*category.Group, error) {
	var m CategoryGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrGroupNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toGroupDomain(&m), nil
}

func (r *categoryRepository) UpdateGroup(ctx context.Context, g *category.Group) error {
	res := r.db.WithContext(ctx).Model(&CategoryGroup{}).Where("id = ?", g.ID).Update("name", g.Name)
	return rowsOrNotFound(res, category.ErrGroupNotFound)
}

func (r *categoryRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CategoryGroup{})
	return rowsOrNotFound(res, category.ErrGroupNotFound)
}

func (r *categoryRepository) ListGroups(ctx context.Context) ([]*category.Group, error) {
	var ms []CategoryGroup
	if err := r.db.WithContext(ctx).Order("type asc").Order("name asc").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*category.Group, 0, len(ms))
	for i := range ms {
		out = append(out, toGroupDomain(&ms[i]))
	}
	return out, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(toCategoryModel(c)).Error
	})
}

func (r *categoryRepository) Get(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	var m Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toCategoryDomain(&m), nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	res := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", c.ID).
		Updates(map[string]any{"name": c.Name, "group_id": c.GroupID})
	return rowsOrNotFound(res, category.ErrCategoryNotFound)
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Category{})
	return rowsOrNotFound(res, category.ErrCategoryNotFound)
}

func (r *categoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *categoryRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*category.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("group_id = ?", groupID))
}

func (r *categoryRepository) find(q *gorm.DB) ([]*category.Category, error) {
	var ms []Category
	if err := q.Order("name asc").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*category.Category, 0, len(ms))
	for i := range ms {
		out = append(out, toCategoryDomain(&ms[i]))
	}
	return out, nil
}

func (r *categoryRepository) DeleteByGroup(ctx context.Context, groupID uuid.UUID) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&Category{}).Error
	})
}
