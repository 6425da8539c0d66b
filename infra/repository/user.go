package repository

import (
	"context"
	"errors"

	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user and family repository bound to db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateFamily(ctx context.Context, f *user.Family) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&Family{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}).Error
	})
}

func (r *userRepository) GetFamily(ctx context.Context, id uuid.UUID) (*user.Family, error) {
	var m Family
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrFamilyNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return &user.Family{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}, nil
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(toUserModel(u)).Error
	})
}

func (r *userRepository) first(q *gorm.DB) (*user.User, error) {
	var m User
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toUserDomain(&m), nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *userRepository) GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND family_id = ?", id, familyID))
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("name = ?", name))
}

func (r *userRepository) List(ctx context.Context, familyID uuid.UUID) ([]*user.User, error) {
	return r.find(r.db.WithContext(ctx).Where("family_id = ?", familyID))
}

func (r *userRepository) ListWithoutPassword(ctx context.Context) ([]*user.User, error) {
	return r.find(r.db.WithContext(ctx).Where("password = '' OR password IS NULL"))
}

func (r *userRepository) find(q *gorm.DB) ([]*user.User, error) {
	var ms []User
	if err := q.Order("created_at asc").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*user.User, 0, len(ms))
	for i := range ms {
		out = append(out, toUserDomain(&ms[i]))
	}
	return out, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":       u.Name,
		"role":       string(u.Role),
		"is_admin":   u.IsAdmin,
		"color":      u.Color,
		"avatar":     u.Avatar,
		"password":   u.Password,
		"updated_at": u.UpdatedAt,
	})
	return rowsOrNotFound(res, user.ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	return rowsOrNotFound(res, user.ErrUserNotFound)
}
