package account

import (
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = domain.NewKind(domain.ErrNotFound, "account not found")

	// ErrInvalidType is returned for an account type outside the known set.
	ErrInvalidType = domain.NewKind(domain.ErrValidation, "invalid account type")

	// ErrInvalidStatus is returned for an account status outside the known set.
	ErrInvalidStatus = domain.NewKind(domain.ErrValidation, "invalid account status")

	// ErrNameRequired is returned when an account has no name.
	ErrNameRequired = domain.NewKind(domain.ErrValidation, "account name is required")

	// ErrOwnerRequired is returned when an account has no owner.
	ErrOwnerRequired = domain.NewKind(domain.ErrValidation, "account owner is required")

	// ErrAccountInUse is returned when deleting an account still referenced by ledger rows.
	ErrAccountInUse = domain.NewKind(domain.ErrConflict, "account is referenced by transactions or reconciliations")
)

// Type is the kind of money container.
type Type string

const (
	TypeBank   Type = "bank"
	TypeCash   Type = "cash"
	TypeCredit Type = "credit"
	TypeWallet Type = "wallet"
	TypeLoan   Type = "loan"
	TypeInvest Type = "invest"
)

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	switch t {
	case TypeBank, TypeCash, TypeCredit, TypeWallet, TypeLoan, TypeInvest:
		return true
	}
	return false
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known account status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

// DefaultColor is used when an account is created without a color.
const DefaultColor = "#000000"

// Account is a balance-holding container owned by exactly one user.
//
// Invariants:
//   - Balance equals the signed sum of every completed transaction touching the
//     account, adjusted by reconciliations.
//   - Balance is only written by the ledger engine, reconciliation and recalculation.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Type      Type            `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Color     string          `json:"color"`
	Icon      string          `json:"icon,omitempty"`
	AccountNo string          `json:"accountNo,omitempty"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	name      string
	typ       Type
	balance   decimal.Decimal
	color     string
	icon      string
	accountNo string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder with defaults: a fresh id, wallet type, black color, active status.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		typ:       TypeWallet,
		color:     DefaultColor,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// WithID sets the ID for the account being built.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithName sets the display name. This is a mandatory field.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithType sets the account type. Empty keeps the default.
func (b *Builder) WithType(t Type) *Builder {
	if t != "" {
		b.typ = t
	}
	return b
}

// WithBalance sets the starting balance. Only used on first creation or when
// hydrating from a data store.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithColor sets the display color. Empty keeps the default.
func (b *Builder) WithColor(color string) *Builder {
	if color != "" {
		b.color = color
	}
	return b
}

func (b *Builder) WithIcon(icon string) *Builder {
	b.icon = icon
	return b
}

func (b *Builder) WithAccountNo(no string) *Builder {
	b.accountNo = no
	return b
}

// WithStatus sets the status. Empty keeps the default.
func (b *Builder) WithStatus(s Status) *Builder {
	if s != "" {
		b.status = s
	}
	return b
}

// WithCreatedAt sets the creation timestamp for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp for hydration.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the collected fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	if b.name == "" {
		return nil, ErrNameRequired
	}
	if !b.typ.Valid() {
		return nil, ErrInvalidType
	}
	if !b.status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &Account{
		ID:        b.id,
		UserID:    b.userID,
		Name:      b.name,
		Type:      b.typ,
		Balance:   b.balance.Round(2),
		Color:     b.color,
		Icon:      b.icon,
		AccountNo: b.accountNo,
		Status:    b.status,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// Patch holds the descriptive fields an owner may edit. Balance is deliberately absent.
type Patch struct {
	Name      *string
	Type      *Type
	Color     *string
	Icon      *string
	AccountNo *string
	Status    *Status
}

// Apply validates and applies p to a.
func (a *Account) Apply(p Patch) error {
	if p.Name != nil {
		if *p.Name == "" {
			return ErrNameRequired
		}
		a.Name = *p.Name
	}
	if p.Type != nil {
		if !p.Type.Valid() {
			return ErrInvalidType
		}
		a.Type = *p.Type
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return ErrInvalidStatus
		}
		a.Status = *p.Status
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.Icon != nil {
		a.Icon = *p.Icon
	}
	if p.AccountNo != nil {
		a.AccountNo = *p.AccountNo
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}
