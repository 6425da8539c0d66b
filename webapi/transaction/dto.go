package transaction

import (
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/webapi/common"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest represents the request body for a new
// transaction. A planned transaction keeps Amount as its plan amount and
// moves no balance until it is completed.
type CreateTransactionRequest struct {
	Type        string           `json:"type" validate:"required,oneof=income expense transfer"`
	Status      string           `json:"status" validate:"omitempty,oneof=planned completed"`
	Amount      decimal.Decimal  `json:"amount"`
	PlanAmount  *decimal.Decimal `json:"planAmount"`
	Fee         decimal.Decimal  `json:"fee"`
	Date        string           `json:"date"`
	Description string           `json:"description" validate:"max=255"`
	Note        string           `json:"note" validate:"max=1000"`
	Tags        []string         `json:"tags" validate:"omitempty,dive,max=50"`
	SlipImage   string           `json:"slipImage" validate:"max=500"`
	CategoryID  string           `json:"categoryId" validate:"omitempty,uuid"`
	AccountID   string           `json:"accountId" validate:"omitempty,uuid"`
	ToAccountID string           `json:"toAccountId" validate:"omitempty,uuid"`
	BudgetID    string           `json:"budgetId" validate:"omitempty,uuid"`
}

// UpdateTransactionRequest is one PATCH. Status "completed" on a planned
// transaction completes it using Amount, Fee and the account fields; any
// other request is a standard update of the descriptive fields.
type UpdateTransactionRequest struct {
	Status      *string          `json:"status" validate:"omitempty,oneof=planned completed void"`
	Amount      *decimal.Decimal `json:"amount"`
	Fee         *decimal.Decimal `json:"fee"`
	AccountID   *string          `json:"accountId" validate:"omitempty,uuid"`
	ToAccountID *string          `json:"toAccountId" validate:"omitempty,uuid"`
	PlanAmount  *decimal.Decimal `json:"planAmount"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
	Note        *string          `json:"note" validate:"omitempty,max=1000"`
	Tags        []string         `json:"tags" validate:"omitempty,dive,max=50"`
	SlipImage   *string          `json:"slipImage" validate:"omitempty,max=500"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,uuid"`
	Date        *string          `json:"date"`
}

func (r *CreateTransactionRequest) toDraft() (transaction.Draft, error) {
	d := transaction.Draft{
		Type:        transaction.Type(r.Type),
		Status:      transaction.Status(r.Status),
		Amount:      r.Amount,
		PlanAmount:  r.PlanAmount,
		Fee:         r.Fee,
		Description: r.Description,
		Note:        r.Note,
		Tags:        r.Tags,
		SlipImage:   r.SlipImage,
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
	if d.BudgetID, err = common.ParseOptionalID(r.BudgetID, "budgetId"); err != nil {
		return d, err
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *UpdateTransactionRequest) toChange() (ledger.Change, error) {
	var ch ledger.Change
	var err error
	ch.Patch = transaction.Patch{
		Description: r.Description,
		Note:        r.Note,
		Tags:        r.Tags,
		SlipImage:   r.SlipImage,
		PlanAmount:  r.PlanAmount,
	}
	if ch.Patch.Date, err = common.ParseDate(deref(r.Date), "date"); err != nil {
		return ch, err
	}
	if ch.Patch.CategoryID, err = common.ParseOptionalID(deref(r.CategoryID), "categoryId"); err != nil {
		return ch, err
	}
	if r.Status != nil {
		s := transaction.Status(*r.Status)
		if s == transaction.StatusCompleted {
			ch.Complete = true
		} else {
			ch.Patch.Status = &s
		}
	}
	ch.Completion = transaction.Completion{
		Amount:      r.Amount,
		Fee:         r.Fee,
		Description: r.Description,
		Date:        ch.Patch.Date,
	}
	if ch.Completion.AccountID, err = common.ParseOptionalID(deref(r.AccountID), "accountId"); err != nil {
		return ch, err
	}
	if ch.Completion.ToAccountID, err = common.ParseOptionalID(deref(r.ToAccountID), "toAccountId"); err != nil {
		return ch, err
	}
	return ch, nil
}
