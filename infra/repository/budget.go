package repository

import (
	"context"
	"errors"

	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a budget repository bound to db.
func NewBudgetRepository(db *gorm.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	m, err := toBudgetModel(b)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *budgetRepository) first(q *gorm.DB) (*budget.Budget, error) {
	var m Budget
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrBudgetNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toBudgetDomain(&m), nil
}

func (r *budgetRepository) Get(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *budgetRepository) GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*budget.Budget, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND created_by_id IN ("+familyUsers+")", id, familyID))
}

func (r *budgetRepository) ListActive(ctx context.Context, familyID uuid.UUID) ([]*budget.Budget, error) {
	var ms []Budget
	err := r.db.WithContext(ctx).
		Where("status <> ? AND created_by_id IN ("+familyUsers+")", string(budget.StatusArchived), familyID).
		Order("created_at asc").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*budget.Budget, 0, len(ms))
	for i := range ms {
		out = append(out, toBudgetDomain(&ms[i]))
	}
	return out, nil
}

func (r *budgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	m, err := toBudgetModel(b)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(m).Select(
		"title", "description", "limit_amount", "period", "start_date", "end_date",
		"icon", "color", "status", "updated_at",
	).Updates(m)
	return rowsOrNotFound(res, budget.ErrBudgetNotFound)
}

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates an append-only reconciliation repository bound to db.
func NewReconciliationRepository(db *gorm.DB) repository.ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(ctx context.Context, rec *reconciliation.Reconciliation) error {
	m, err := toReconciliationModel(rec)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *reconciliationRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
) ([]*reconciliation.Reconciliation, error) {
	var ms []Reconciliation
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("created_at desc").Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*reconciliation.Reconciliation, 0, len(ms))
	for i := range ms {
		out = append(out, toReconciliationDomain(&ms[i]))
	}
	return out, nil
}
