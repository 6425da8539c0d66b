package repository

import (
	"context"

	"github.com/fammee/finance/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Outside Do the repositories run on the base connection; inside Do they all
// share the gorm transaction.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
// Nested calls join the outer transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return NewAccountRepository(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return NewTransactionRepository(u.session()), nil
}

func (u *UoW) BudgetRepository() (repository.BudgetRepository, error) {
	return NewBudgetRepository(u.session()), nil
}

func (u *UoW) ReconciliationRepository() (repository.ReconciliationRepository, error) {
	return NewReconciliationRepository(u.session()), nil
}

func (u *UoW) CategoryRepository() (repository.CategoryRepository, error) {
	return NewCategoryRepository(u.session()), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return NewUserRepository(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
