package repository

import (
	"context"
	"errors"

	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	m, err := toTransactionModel(t)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *transactionRepository) first(q *gorm.DB) (*transaction.Transaction, error) {
	var m Transaction
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toTransactionDomain(&m), nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *transactionRepository) GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*transaction.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND created_by_id IN ("+familyUsers+")", id, familyID))
}

// GetInFamilyForUpdate is GetInFamily holding a row lock. Dialects without
// row locks (sqlite) drop the clause and serialize on the database lock instead.
func (r *transactionRepository) GetInFamilyForUpdate(ctx context.Context, id, familyID uuid.UUID) (*transaction.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND created_by_id IN ("+familyUsers+")", id, familyID))
}

// Update persists every mutable column of t, provided the stored row still
// has status from.
func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction, from transaction.Status) error {
	m, err := toTransactionModel(t)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(m).Where("status = ?", string(from)).Select(
		"status", "amount", "plan_amount", "fee", "date", "description", "note",
		"tags", "slip_image", "category_id", "account_id", "to_account_id", "updated_at",
	).Updates(m)
	return r.guarded(ctx, res, t.ID)
}

// Delete removes the row provided it still has status from.
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID, from transaction.Status) error {
	res := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, string(from)).Delete(&Transaction{})
	return r.guarded(ctx, res, id)
}

// guarded tells a row that is gone from one whose status moved on.
func (r *transactionRepository) guarded(ctx context.Context, res *gorm.DB, id uuid.UUID) error {
	if res.Error != nil || res.RowsAffected > 0 {
		return rowsOrNotFound(res, transaction.ErrTransactionNotFound)
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	if n == 0 {
		return transaction.ErrTransactionNotFound
	}
	return transaction.ErrConcurrentChange
}

func (r *transactionRepository) List(ctx context.Context, f repository.TransactionFilter) ([]*transaction.Transaction, error) {
	q := r.db.WithContext(ctx)
	if f.FamilyID != uuid.Nil {
		q = q.Where("created_by_id IN ("+familyUsers+")", f.FamilyID)
	}
	if f.SourceAccountIDs != nil {
		q = q.Where("account_id IN ?", nonEmpty(f.SourceAccountIDs))
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ? OR to_account_id = ?", *f.AccountID, *f.AccountID)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.BudgetID != nil {
		q = q.Where("budget_id = ?", *f.BudgetID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var ms []Transaction
	if err := q.Order("date desc").Order("created_at desc").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*transaction.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, toTransactionDomain(&ms[i]))
	}
	return out, nil
}

func (r *transactionRepository) VoidPlannedByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("budget_id = ? AND status = ?", budgetID, string(transaction.StatusPlanned)).
		Update("status", string(transaction.StatusVoid))
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *transactionRepository) CountByCategories(ctx context.Context, categoryIDs ...uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&Transaction{}).Where("category_id IN ?", categoryIDs).Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func (r *transactionRepository) EachCompleted(
	ctx context.Context,
	batchSize int,
	fn func(batch []*transaction.Transaction) error,
) error {
	var ms []Transaction
	res := r.db.WithContext(ctx).
		Where("status = ?", string(transaction.StatusCompleted)).
		FindInBatches(&ms, batchSize, func(tx *gorm.DB, _ int) error {
			batch := make([]*transaction.Transaction, 0, len(ms))
			for i := range ms {
				batch = append(batch, toTransactionDomain(&ms[i]))
			}
			return fn(batch)
		})
	return MapGormErrorToDomain(res.Error)
}

// nonEmpty turns an explicit empty id set into one that matches no row.
func nonEmpty(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}
