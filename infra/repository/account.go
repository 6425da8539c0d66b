package repository

import (
	"context"
	"errors"

	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/money"
	"github.com/fammee/finance/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// familyUsers selects the ids of every user in a family.
const familyUsers = "SELECT id FROM users WHERE family_id = ?"

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m, err := toAccountModel(a)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *accountRepository) first(db *gorm.DB, query string, args ...any) (*account.Account, error) {
	var m Account
	if err := db.Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return toAccountDomain(&m), nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *accountRepository) GetInFamily(ctx context.Context, id, familyID uuid.UUID) (*account.Account, error) {
	return r.first(r.db.WithContext(ctx), "id = ? AND user_id IN ("+familyUsers+")", id, familyID)
}

// GetForUpdate locks the row with SELECT ... FOR UPDATE. Dialects without
// row locks (sqlite) drop the clause and serialize on the database lock instead.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *accountRepository) List(ctx context.Context, filter repository.AccountFilter) ([]*account.Account, error) {
	q := r.db.WithContext(ctx).Where("user_id IN ("+familyUsers+")", filter.FamilyID)
	if len(filter.UserIDs) > 0 {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	return r.find(q)
}

func (r *accountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *accountRepository) find(q *gorm.DB) ([]*account.Account, error) {
	var ms []Account
	if err := q.Order("created_at asc").Find(&ms).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		out = append(out, toAccountDomain(&ms[i]))
	}
	return out, nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":       a.Name,
		"type":       string(a.Type),
		"color":      a.Color,
		"icon":       a.Icon,
		"account_no": a.AccountNo,
		"status":     string(a.Status),
		"updated_at": a.UpdatedAt,
	})
	return rowsOrNotFound(res, account.ErrAccountNotFound)
}

// AdjustBalance applies delta as one atomic increment on the row.
func (r *accountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	minor, err := money.ToMinor(delta)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", minor))
	return rowsOrNotFound(res, account.ErrAccountNotFound)
}

func (r *accountRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	minor, err := money.ToMinor(balance)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Update("balance", minor)
	return rowsOrNotFound(res, account.ErrAccountNotFound)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Account{})
	return rowsOrNotFound(res, account.ErrAccountNotFound)
}

func (r *accountRepository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var txs, recs int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&Transaction{}).Where("account_id = ? OR to_account_id = ?", id, id).Count(&txs).Error; err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	if err := db.Model(&Reconciliation{}).Where("account_id = ?", id).Count(&recs).Error; err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	return txs + recs, nil
}
