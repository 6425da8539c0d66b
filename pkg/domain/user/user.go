package user

import (
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = domain.NewKind(domain.ErrNotFound, "user not found")
	// ErrFamilyNotFound is returned when a family cannot be found.
	ErrFamilyNotFound = domain.NewKind(domain.ErrNotFound, "family not found")
	// ErrUserUnauthorized is returned when credentials do not match.
	ErrUserUnauthorized = domain.NewKind(domain.ErrUnauthorized, "user unauthorized")
	// ErrNameRequired is returned when a user or family has no name.
	ErrNameRequired = domain.NewKind(domain.ErrValidation, "name is required")
	// ErrInvalidRole is returned for a role outside parent/child.
	ErrInvalidRole = domain.NewKind(domain.ErrValidation, "invalid role")
	// ErrParentOnly is returned when a child attempts a parent-only action.
	ErrParentOnly = domain.NewKind(domain.ErrForbidden, "only parents may do this")
)

// Role separates parents (family-wide visibility) from children (own accounts only).
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// Family is the tenancy boundary: every user, and through them every account, belongs to one.
type Family struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFamily creates a Family with a fresh id.
func NewFamily(name string) (*Family, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Family{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}, nil
}

// User represents a family member.
type User struct {
	ID        uuid.UUID `json:"id"`
	FamilyID  uuid.UUID `json:"familyId"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsAdmin   bool      `json:"isAdmin"`
	Color     string    `json:"color,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates a new User. An empty role defaults to child; an empty
// password leaves the account without login until one is set.
func NewUser(familyID uuid.UUID, name string, role Role, password string) (*User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if role == "" {
		role = RoleChild
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	u := &User{
		ID:        uuid.New(),
		FamilyID:  familyID,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if password != "" {
		if err := u.SetPassword(password); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// SetPassword hashes and stores a new password.
func (u *User) SetPassword(password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// HasPassword reports whether the user can log in.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return u.HasPassword() && utils.CheckPasswordHash(password, u.Password)
}

// Actor is the authenticated caller every family-scoped operation runs as.
type Actor struct {
	UserID   uuid.UUID
	FamilyID uuid.UUID
	Role     Role
}

// ActorOf returns the Actor for u.
func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, FamilyID: u.FamilyID, Role: u.Role}
}

// IsParent reports whether the actor has family-wide visibility.
func (a Actor) IsParent() bool {
	return a.Role == RoleParent
}
