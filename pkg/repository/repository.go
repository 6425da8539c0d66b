package repository

import (
	"context"
	"time"

	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/category"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFilter narrows an account listing.
type AccountFilter struct {
	FamilyID uuid.UUID
	UserIDs  []uuid.UUID
}

// AccountRepository defines the interface for account data access operations.
//
// AdjustBalance and SetBalance are the only writers of the balance column.
// AdjustBalance is a single atomic increment so concurrent callers against
// the same account never lose an update.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*account.Account, error)
	// GetForUpdate reads the account holding a row lock until the unit of work ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]*account.Account, error)
	ListAll(ctx context.Context) ([]*account.Account, error)
	// Update persists descriptive fields. It never writes the balance.
	Update(ctx context.Context, a *account.Account) error
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountReferences counts transactions and reconciliations pointing at the account.
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

// TransactionFilter narrows a transaction listing. Empty fields do not filter.
type TransactionFilter struct {
	FamilyID uuid.UUID
	// SourceAccountIDs matches accountId only.
	SourceAccountIDs []uuid.UUID
	// AccountID matches either side of a transfer.
	AccountID   *uuid.UUID
	Types       []transaction.Type
	Statuses    []transaction.Status
	CategoryIDs []uuid.UUID
	BudgetID    *uuid.UUID
	// From and To are inclusive bounds on the transaction date.
	From  *time.Time
	To    *time.Time
	Limit int
}

// TransactionRepository defines the interface for transaction data access operations.
type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*transaction.Transaction, error)
	// GetInFamilyForUpdate reads the transaction holding a row lock until the unit of work ends.
	GetInFamilyForUpdate(ctx context.Context, id, familyID uuid.UUID) (*transaction.Transaction, error)
	// Update and Delete only touch the row while its status is still from and
	// return transaction.ErrConcurrentChange otherwise.
	Update(ctx context.Context, t *transaction.Transaction, from transaction.Status) error
	Delete(ctx context.Context, id uuid.UUID, from transaction.Status) error
	// List returns matches newest first by date.
	List(ctx context.Context, filter TransactionFilter) ([]*transaction.Transaction, error)
	// VoidPlannedByBudget voids every planned item of a budget and returns how many changed.
	VoidPlannedByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error)
	CountByCategories(ctx context.Context, categoryIDs ...uuid.UUID) (int64, error)
	// EachCompleted streams every completed transaction in batches.
	EachCompleted(ctx context.Context, batchSize int, fn func(batch []*transaction.Transaction) error) error
}

// BudgetRepository defines the interface for budget data access operations.
type BudgetRepository interface {
	Create(ctx context.Context, b *budget.Budget) error
	Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error)
	GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*budget.Budget, error)
	// ListActive returns the non-archived budgets created by members of the family.
	ListActive(ctx context.Context, familyID uuid.UUID) ([]*budget.Budget, error)
	Update(ctx context.Context, b *budget.Budget) error
}

// ReconciliationRepository is append-only: there is no update or delete.
type ReconciliationRepository interface {
	Create(ctx context.Context, r *reconciliation.Reconciliation) error
	// ListByAccount returns the history newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*reconciliation.Reconciliation, error)
}

// CategoryRepository defines data access for categories and their groups.
type CategoryRepository interface {
	CreateGroup(ctx context.Context, g *category.Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*category.Group, error)
	UpdateGroup(ctx context.Context, g *category.Group) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	// ListGroups orders by type.
	ListGroups(ctx context.Context) ([]*category.Group, error)

	Create(ctx context.Context, c *category.Category) error
	Get(ctx context.Context, id uuid.UUID) (*category.Category, error)
	Update(ctx context.Context, c *category.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by name.
	List(ctx context.Context) ([]*category.Category, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*category.Category, error)
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) error
}

// UserRepository defines the interface for user and family data access operations.
type UserRepository interface {
	CreateFamily(ctx context.Context, f *user.Family) error
	GetFamily(ctx context.Context, id uuid.UUID) (*user.Family, error)

	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*user.User, error)
	GetByName(ctx context.Context, name string) (*user.User, error)
	List(ctx context.Context, familyID uuid.UUID) ([]*user.User, error)
	ListWithoutPassword(ctx context.Context) ([]*user.User, error)
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
