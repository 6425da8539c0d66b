package category

import (
	"fmt"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/google/uuid"
)

var (
	// ErrCategoryNotFound is returned when a category cannot be found.
	ErrCategoryNotFound = domain.NewKind(domain.ErrNotFound, "category not found")
	// ErrGroupNotFound is returned when a category group cannot be found.
	ErrGroupNotFound = domain.NewKind(domain.ErrNotFound, "category group not found")
	// ErrNameRequired is returned when a category or group has no name.
	ErrNameRequired = domain.NewKind(domain.ErrValidation, "name is required")
	// ErrGroupRequired is returned when a category has no group.
	ErrGroupRequired = domain.NewKind(domain.ErrValidation, "groupId is required")
)

// InUse reports a category still referenced by n transactions.
func InUse(n int64) error {
	return domain.Conflictf(
		"cannot delete this category because it is used in %d transaction(s); rename it instead", n)
}

// GroupInUse reports a group whose categories are still referenced by n transactions.
func GroupInUse(n int64) error {
	return domain.Conflictf(
		"cannot delete this group because its categories are used in %d transaction(s)", n)
}

// Group clusters categories under one transaction type.
type Group struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      transaction.Type `json:"type"`
	IsCustom  bool             `json:"isCustom"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewGroup creates a user defined group.
func NewGroup(name string, typ transaction.Type) (*Group, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if !typ.Valid() {
		return nil, transaction.ErrInvalidType
	}
	return &Group{ID: uuid.New(), Name: name, Type: typ, IsCustom: true, CreatedAt: time.Now().UTC()}, nil
}

// Category labels transactions.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	GroupID   uuid.UUID  `json:"groupId"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// New creates a category in groupID, optionally private to userID.
func New(name string, groupID uuid.UUID, userID *uuid.UUID) (*Category, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if groupID == uuid.Nil {
		return nil, ErrGroupRequired
	}
	return &Category{ID: uuid.New(), Name: name, GroupID: groupID, UserID: userID, CreatedAt: time.Now().UTC()}, nil
}

// Rename changes the category name and, when given, its group.
func (c *Category) Rename(name *string, groupID *uuid.UUID) error {
	if name != nil {
		if *name == "" {
			return ErrNameRequired
		}
		c.Name = *name
	}
	if groupID != nil {
		if *groupID == uuid.Nil {
			return ErrGroupRequired
		}
		c.GroupID = *groupID
	}
	return nil
}

func (c *Category) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
