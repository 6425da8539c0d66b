package repository

import (
	"time"

	"github.com/google/uuid"
)

// Money columns hold int64 cents so database arithmetic is exact.

// Family represents a family record in the database.
type Family struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"not null;size:100"`
	CreatedAt time.Time
}

func (Family) TableName() string { return "families" }

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	FamilyID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"uniqueIndex;not null;size:50"`
	Role      string    `gorm:"size:10;not null;default:'child'"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	Color     string    `gorm:"size:20"`
	Avatar    string    `gorm:"size:255"`
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// Account represents an account record in the database.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null;size:100"`
	Type      string    `gorm:"size:10;not null;default:'wallet'"`
	Balance   int64     `gorm:"not null;default:0"`
	Color     string    `gorm:"size:20;not null;default:'#000000'"`
	Icon      string    `gorm:"size:50"`
	AccountNo string    `gorm:"size:50"`
	Status    string    `gorm:"size:10;not null;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string { return "accounts" }

// Transaction represents a persisted ledger record.
type Transaction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	Type        string     `gorm:"size:10;not null"`
	Status      string     `gorm:"size:10;not null;index"`
	Amount      int64      `gorm:"not null;default:0"`
	PlanAmount  int64      `gorm:"not null;default:0"`
	Fee         int64      `gorm:"not null;default:0"`
	Date        time.Time  `gorm:"not null;index"`
	Description string     `gorm:"size:255"`
	Note        string
	Tags        []string   `gorm:"serializer:json;type:text"`
	SlipImage   string     `gorm:"size:255"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	AccountID   *uuid.UUID `gorm:"type:uuid;index"`
	ToAccountID *uuid.UUID `gorm:"type:uuid;index"`
	BudgetID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Transaction) TableName() string { return "transactions" }

// Budget represents a budget record in the database.
type Budget struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"not null;size:100"`
	Description string
	LimitAmount int64  `gorm:"not null;default:0"`
	Period      string `gorm:"size:10;not null;default:'one_time'"`
	StartDate   *time.Time
	EndDate     *time.Time
	Icon        string    `gorm:"size:50"`
	Color       string    `gorm:"size:20"`
	Status      string    `gorm:"size:10;not null;default:'active';index"`
	CreatedByID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Budget) TableName() string { return "budgets" }

// Reconciliation represents an immutable balance correction record.
type Reconciliation struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID `gorm:"type:uuid;index;not null"`
	PreviousBalance int64     `gorm:"not null"`
	NewBalance      int64     `gorm:"not null"`
	Difference      int64     `gorm:"not null"`
	Note            string
	PerformedByID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time `gorm:"index"`
}

func (Reconciliation) TableName() string { return "reconciliations" }

// CategoryGroup represents a category group record in the database.
type CategoryGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"not null;size:100"`
	Type      string    `gorm:"size:10;not null"`
	IsCustom  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (CategoryGroup) TableName() string { return "category_groups" }

// Category represents a category record in the database.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name      string     `gorm:"not null;size:100"`
	GroupID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (Category) TableName() string { return "categories" }

// Models lists every table model, in dependency order, for AutoMigrate.
func Models() []any {
	return []any{
		&Family{}, &User{}, &Account{}, &CategoryGroup{}, &Category{},
		&Budget{}, &Transaction{}, &Reconciliation{},
	}
}
