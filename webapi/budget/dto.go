package budget

import (
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/transaction"
	budgetsvc "github.com/fammee/finance/pkg/service/budget"
	"github.com/fammee/finance/webapi/common"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest represents the request body for a new budget.
type CreateBudgetRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Limit       decimal.Decimal `json:"limit"`
	Period      string          `json:"period" validate:"omitempty,oneof=monthly one_time"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Icon        string          `json:"icon" validate:"max=50"`
	Color       string          `json:"color" validate:"max=20"`
	CreatedByID string          `json:"createdById" validate:"omitempty,uuid"`
}

// UpdateBudgetRequest holds the editable budget fields.
type UpdateBudgetRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Limit       *decimal.Decimal `json:"limit"`
	Period      *string          `json:"period" validate:"omitempty,oneof=monthly one_time"`
	StartDate   *string          `json:"startDate"`
	EndDate     *string          `json:"endDate"`
	Icon        *string          `json:"icon" validate:"omitempty,max=50"`
	Color       *string          `json:"color" validate:"omitempty,max=20"`
}

// AddItemRequest plans a new budget item.
type AddItemRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"omitempty,oneof=income expense transfer"`
	Date        string          `json:"date"`
	Tags        []string        `json:"tags" validate:"omitempty,dive,max=50"`
	CategoryID  string          `json:"categoryId" validate:"omitempty,uuid"`
	AccountID   string          `json:"accountId" validate:"omitempty,uuid"`
	ToAccountID string          `json:"toAccountId" validate:"omitempty,uuid"`
}

// UpdateItemRequest edits a budget item. Status moves a pending item to
// done or cancelled.
type UpdateItemRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=255"`
	PlanAmount *decimal.Decimal `json:"plannedAmount"`
	CategoryID *string          `json:"categoryId" validate:"omitempty,uuid"`
	Date       *string          `json:"date"`
	Tags       []string         `json:"tags" validate:"omitempty,dive,max=50"`
	Note       *string          `json:"note" validate:"omitempty,max=1000"`
	Status     *string          `json:"status" validate:"omitempty,oneof=pending done cancelled"`
}

// CompleteItemRequest books a pending item.
type CompleteItemRequest struct {
	ActualAmount *decimal.Decimal `json:"actualAmount"`
	Fee          *decimal.Decimal `json:"fee"`
	AccountID    string           `json:"accountId" validate:"omitempty,uuid"`
	ToAccountID  string           `json:"toAccountId" validate:"omitempty,uuid"`
	Date         string           `json:"date"`
}

func (r *CreateBudgetRequest) toDraft() (d budget.Draft, err error) {
	d = budget.Draft{
		Title:       r.Title,
		Description: r.Description,
		Limit:       r.Limit,
		Period:      budget.Period(r.Period),
		Icon:        r.Icon,
		Color:       r.Color,
	}
	if d.StartDate, err = common.ParseDate(r.StartDate, "startDate"); err != nil {
		return d, err
	}
	if d.EndDate, err = common.ParseDate(r.EndDate, "endDate"); err != nil {
		return d, err
	}
	creator, err := common.ParseOptionalID(r.CreatedByID, "createdById")
	if err != nil {
		return d, err
	}
	if creator != nil {
		d.CreatedByID = *creator
	}
	return d, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *UpdateBudgetRequest) toPatch() (p budget.Patch, err error) {
	p = budget.Patch{
		Title:       r.Title,
		Description: r.Description,
		Limit:       r.Limit,
		Icon:        r.Icon,
		Color:       r.Color,
	}
	if r.Period != nil {
		period := budget.Period(*r.Period)
		p.Period = &period
	}
	if p.StartDate, err = common.ParseDate(optional(r.StartDate), "startDate"); err != nil {
		return p, err
	}
	if p.EndDate, err = common.ParseDate(optional(r.EndDate), "endDate"); err != nil {
		return p, err
	}
	return p, nil
}

func (r *AddItemRequest) toDraft() (d budgetsvc.ItemDraft, err error) {
	d = budgetsvc.ItemDraft{
		Name:   r.Name,
		Amount: r.Amount,
		Type:   transaction.Type(r.Type),
		Tags:   r.Tags,
	}
	date, err := common.ParseDate(r.Date, "date")
	if err != nil {
		return d, err
	}
	if date != nil {
		d.Date = *date
	}
	if d.CategoryID, err = common.ParseOptionalID(r.CategoryID, "categoryId"); err != nil {
		return d, err
	}
	if d.AccountID, err = common.ParseOptionalID(r.AccountID, "accountId"); err != nil {
		return d, err
	}
	if d.ToAccountID, err = common.ParseOptionalID(r.ToAccountID, "toAccountId"); err != nil {
		return d, err
	}
	return d, nil
}

func (r *UpdateItemRequest) toPatch() (p budgetsvc.ItemPatch, err error) {
	p = budgetsvc.ItemPatch{
		Name:       r.Name,
		PlanAmount: r.PlanAmount,
		Tags:       r.Tags,
		Note:       r.Note,
	}
	if r.Status != nil {
		s := transaction.ItemStatus(*r.Status)
		p.Status = &s
	}
	if p.Date, err = common.ParseDate(optional(r.Date), "date"); err != nil {
		return p, err
	}
	if p.CategoryID, err = common.ParseOptionalID(optional(r.CategoryID), "categoryId"); err != nil {
		return p, err
	}
	return p, nil
}

func (r *CompleteItemRequest) toCompletion() (c transaction.Completion, err error) {
	c = transaction.Completion{Amount: r.ActualAmount, Fee: r.Fee}
	if c.AccountID, err = common.ParseOptionalID(r.AccountID, "accountId"); err != nil {
		return c, err
	}
	if c.ToAccountID, err = common.ParseOptionalID(r.ToAccountID, "toAccountId"); err != nil {
		return c, err
	}
	if c.Date, err = common.ParseDate(r.Date, "date"); err != nil {
		return c, err
	}
	return c, nil
}
