package repository

import (
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/category"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/money"
	"github.com/shopspring/decimal"
)

// cents converts each amount to minor units, failing on the first overflow.
func cents(amounts ...decimal.Decimal) ([]int64, error) {
	out := make([]int64, len(amounts))
	for i, a := range amounts {
		m, err := money.ToMinor(a)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func toAccountModel(a *account.Account) (*Account, error) {
	c, err := cents(a.Balance)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   c[0],
		Color:     a.Color,
		Icon:      a.Icon,
		AccountNo: a.AccountNo,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}, nil
}

func toAccountDomain(m *Account) *account.Account {
	return &account.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Type:      account.Type(m.Type),
		Balance:   money.FromMinor(m.Balance),
		Color:     m.Color,
		Icon:      m.Icon,
		AccountNo: m.AccountNo,
		Status:    account.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toTransactionModel(t *transaction.Transaction) (*Transaction, error) {
	c, err := cents(t.Amount, t.PlanAmount, t.Fee)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:          t.ID,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Amount:      c[0],
		PlanAmount:  c[1],
		Fee:         c[2],
		Date:        t.Date.UTC(),
		Description: t.Description,
		Note:        t.Note,
		Tags:        t.Tags,
		SlipImage:   t.SlipImage,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		BudgetID:    t.BudgetID,
		CreatedByID: t.CreatedByID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func toTransactionDomain(m *Transaction) *transaction.Transaction {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &transaction.Transaction{
		ID:          m.ID,
		Type:        transaction.Type(m.Type),
		Status:      transaction.Status(m.Status),
		Amount:      money.FromMinor(m.Amount),
		PlanAmount:  money.FromMinor(m.PlanAmount),
		Fee:         money.FromMinor(m.Fee),
		Date:        m.Date.UTC(),
		Description: m.Description,
		Note:        m.Note,
		Tags:        tags,
		SlipImage:   m.SlipImage,
		CategoryID:  m.CategoryID,
		AccountID:   m.AccountID,
		ToAccountID: m.ToAccountID,
		BudgetID:    m.BudgetID,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBudgetModel(b *budget.Budget) (*Budget, error) {
	c, err := cents(b.Limit)
	if err != nil {
		return nil, err
	}
	return &Budget{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		LimitAmount: c[0],
		Period:      string(b.Period),
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Icon:        b.Icon,
		Color:       b.Color,
		Status:      string(b.Status),
		CreatedByID: b.CreatedByID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}, nil
}

func toBudgetDomain(m *Budget) *budget.Budget {
	return &budget.Budget{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Limit:       money.FromMinor(m.LimitAmount),
		Period:      budget.Period(m.Period),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Icon:        m.Icon,
		Color:       m.Color,
		Status:      budget.Status(m.Status),
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toReconciliationModel(r *reconciliation.Reconciliation) (*Reconciliation, error) {
	c, err := cents(r.PreviousBalance, r.NewBalance, r.Difference)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		ID:              r.ID,
		AccountID:       r.AccountID,
		PreviousBalance: c[0],
		NewBalance:      c[1],
		Difference:      c[2],
		Note:            r.Note,
		PerformedByID:   r.PerformedByID,
		CreatedAt:       r.CreatedAt,
	}, nil
}

func toReconciliationDomain(m *Reconciliation) *reconciliation.Reconciliation {
	return &reconciliation.Reconciliation{
		ID:              m.ID,
		AccountID:       m.AccountID,
		PreviousBalance: money.FromMinor(m.PreviousBalance),
		NewBalance:      money.FromMinor(m.NewBalance),
		Difference:      money.FromMinor(m.Difference),
		Note:            m.Note,
		PerformedByID:   m.PerformedByID,
		CreatedAt:       m.CreatedAt,
	}
}

func toGroupModel(g *category.Group) *CategoryGroup {
	return &CategoryGroup{ID: g.ID, Name: g.Name, Type: string(g.Type), IsCustom: g.IsCustom, CreatedAt: g.CreatedAt}
}

func toGroupDomain(m *CategoryGroup) *category.Group {
	return &category.Group{ID: m.ID, Name: m.Name, Type: transaction.Type(m.Type), IsCustom: m.IsCustom, CreatedAt: m.CreatedAt}
}

func toCategoryModel(c *category.Category) *Category {
	return &Category{ID: c.ID, Name: c.Name, GroupID: c.GroupID, UserID: c.UserID, CreatedAt: c.CreatedAt}
}

func toCategoryDomain(m *Category) *category.Category {
	return &category.Category{ID: m.ID, Name: m.Name, GroupID: m.GroupID, UserID: m.UserID, CreatedAt: m.CreatedAt}
}

func toUserModel(u *user.User) *User {
	return &User{
		ID:        u.ID,
		FamilyID:  u.FamilyID,
		Name:      u.Name,
		Role:      string(u.Role),
		IsAdmin:   u.IsAdmin,
		Color:     u.Color,
		Avatar:    u.Avatar,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserDomain(m *User) *user.User {
	return &user.User{
		ID:        m.ID,
		FamilyID:  m.FamilyID,
		Name:      m.Name,
		Role:      user.Role(m.Role),
		IsAdmin:   m.IsAdmin,
		Color:     m.Color,
		Avatar:    m.Avatar,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
