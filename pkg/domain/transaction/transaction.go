// Package transaction holds the ledger fact record and the balance rules that
// derive account movements from it.
//
// Sign convention on the source account:
//   - income moves balance by +(amount - fee)
//   - expense and transfer move balance by -(amount + fee)
//
// The destination of a transfer moves by +amount. The fee is borne by the
// source only. Planned and void transactions never move any balance.
package transaction

import (
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrTransactionNotFound is returned when a transaction cannot be found.
	ErrTransactionNotFound = domain.NewKind(domain.ErrNotFound, "transaction not found")
	// ErrInvalidType is returned for a type outside income/expense/transfer.
	ErrInvalidType = domain.NewKind(domain.ErrValidation, "invalid transaction type")
	// ErrInvalidStatus is returned for a status that cannot be used here.
	ErrInvalidStatus = domain.NewKind(domain.ErrValidation, "invalid transaction status")
	// ErrAccountRequired is returned when a completed transaction has no source account.
	ErrAccountRequired = domain.NewKind(domain.ErrValidation, "accountId is required for a completed transaction")
	// ErrDestinationRequired is returned when a completed transfer has no destination.
	ErrDestinationRequired = domain.NewKind(domain.ErrValidation, "toAccountId is required for a transfer")
	// ErrSameAccount is returned when a transfer names the same account twice.
	ErrSameAccount = domain.NewKind(domain.ErrValidation, "source and destination accounts must differ")
	// ErrNegativeAmount is returned for a negative amount, plan amount or fee.
	ErrNegativeAmount = domain.NewKind(domain.ErrValidation, "amounts cannot be negative")
	// ErrCreatorRequired is returned when a transaction has no creator.
	ErrCreatorRequired = domain.NewKind(domain.ErrValidation, "createdById is required")
	// ErrNotPlanned is returned when completing a transaction that is not planned.
	ErrNotPlanned = domain.NewKind(domain.ErrValidation, "only a planned transaction can be completed")
	// ErrStatusChange is returned for a status change that would bypass the balance rules.
	ErrStatusChange = domain.NewKind(domain.ErrValidation, "status change not allowed")
	// ErrPlanAmountMismatch is returned when a planned draft carries two different amounts.
	ErrPlanAmountMismatch = domain.NewKind(domain.ErrValidation, "amount and planAmount disagree")
	// ErrConcurrentChange is returned when the row changed status after it was read.
	ErrConcurrentChange = domain.NewKind(domain.ErrConflict, "transaction was changed by another request")
	// ErrUnresolvedAccount is returned when completion cannot resolve a source account.
	ErrUnresolvedAccount = domain.NewKind(domain.ErrConsistency, "completed transaction has no resolvable account")
)

// Type is the direction of a money movement.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Status is the persisted lifecycle of a transaction.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
	StatusVoid      Status = "void"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusVoid:
		return true
	}
	return false
}

// ItemStatus is the three-state view budgets present over Status.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemDone      ItemStatus = "done"
	ItemCancelled ItemStatus = "cancelled"
)

// ItemStatus derives the budget item state from s.
func (s Status) ItemStatus() ItemStatus {
	switch s {
	case StatusCompleted:
		return ItemDone
	case StatusVoid:
		return ItemCancelled
	default:
		return ItemPending
	}
}

// Transaction is a single money movement record.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Type        Type            `json:"type"`
	Status      Status          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	PlanAmount  decimal.Decimal `json:"planAmount"`
	Fee         decimal.Decimal `json:"fee"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Note        string          `json:"note,omitempty"`
	Tags        []string        `json:"tags"`
	SlipImage   string          `json:"slipImage,omitempty"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	AccountID   *uuid.UUID      `json:"accountId,omitempty"`
	ToAccountID *uuid.UUID      `json:"toAccountId,omitempty"`
	BudgetID    *uuid.UUID      `json:"budgetId,omitempty"`
	CreatedByID uuid.UUID       `json:"createdById"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Draft is the input for a new transaction. A planned draft may give its
// planned amount as PlanAmount or Amount; it ends up in PlanAmount and the
// booked amount stays zero.
type Draft struct {
	Type        Type
	Status      Status
	Amount      decimal.Decimal
	PlanAmount  *decimal.Decimal
	Fee         decimal.Decimal
	Date        time.Time
	Description string
	Note        string
	Tags        []string
	SlipImage   string
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	ToAccountID *uuid.UUID
	BudgetID    *uuid.UUID
	CreatedByID uuid.UUID
}

// New validates d and builds the transaction it describes.
func New(d Draft) (*Transaction, error) {
	if !d.Type.Valid() {
		return nil, ErrInvalidType
	}
	if d.Status == "" {
		d.Status = StatusCompleted
	}
	if d.Status != StatusPlanned && d.Status != StatusCompleted {
		return nil, ErrInvalidStatus
	}
	if d.CreatedByID == uuid.Nil {
		return nil, ErrCreatorRequired
	}
	if d.Amount.IsNegative() || d.Fee.IsNegative() || (d.PlanAmount != nil && d.PlanAmount.IsNegative()) {
		return nil, ErrNegativeAmount
	}
	if d.Type != TypeTransfer {
		d.ToAccountID = nil
	}
	if err := checkAccounts(d.Type, d.Status, d.AccountID, d.ToAccountID); err != nil {
		return nil, err
	}
	if d.Date.IsZero() {
		d.Date = time.Now().UTC()
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}

	now := time.Now().UTC()
	t := &Transaction{
		ID:          uuid.New(),
		Type:        d.Type,
		Status:      d.Status,
		Fee:         d.Fee.Round(2),
		Date:        d.Date,
		Description: d.Description,
		Note:        d.Note,
		Tags:        d.Tags,
		SlipImage:   d.SlipImage,
		CategoryID:  d.CategoryID,
		AccountID:   d.AccountID,
		ToAccountID: d.ToAccountID,
		BudgetID:    d.BudgetID,
		CreatedByID: d.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.Status == StatusPlanned {
		plan, err := plannedAmount(d.Amount, d.PlanAmount)
		if err != nil {
			return nil, err
		}
		t.Amount = decimal.Zero
		t.PlanAmount = plan
	} else {
		t.Amount = d.Amount.Round(2)
		if d.PlanAmount != nil {
			t.PlanAmount = d.PlanAmount.Round(2)
		}
	}
	return t, nil
}

// plannedAmount picks the planned amount of a draft. A zero Amount counts as
// unset since planned drafts often omit it.
func plannedAmount(amount decimal.Decimal, plan *decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if plan == nil {
		return amount, nil
	}
	p := plan.Round(2)
	if !amount.IsZero() && !p.IsZero() && !amount.Equal(p) {
		return decimal.Zero, ErrPlanAmountMismatch
	}
	if p.IsZero() {
		return amount, nil
	}
	return p, nil
}

func checkAccounts(typ Type, status Status, src, dst *uuid.UUID) error {
	if status == StatusCompleted {
		if src == nil || *src == uuid.Nil {
			return ErrAccountRequired
		}
		if typ == TypeTransfer && (dst == nil || *dst == uuid.Nil) {
			return ErrDestinationRequired
		}
	}
	if src != nil && dst != nil && *src == *dst {
		return ErrSameAccount
	}
	return nil
}

// Completion carries the caller overrides for a planned to completed transition.
// A nil field falls back to the stored value:
//
//	amount      = Amount      ?? planAmount ?? 0
//	fee         = Fee         ?? stored fee ?? 0
//	accountId   = AccountID   ?? stored accountId
//	toAccountId = ToAccountID ?? stored toAccountId
type Completion struct {
	Amount      *decimal.Decimal
	Fee         *decimal.Decimal
	AccountID   *uuid.UUID
	ToAccountID *uuid.UUID
	Description *string
	Date        *time.Time
}

// Complete resolves c against t and moves t to completed. The type never changes.
// The caller must apply t.Deltas() in the same unit of work.
func (t *Transaction) Complete(c Completion) error {
	if t.Status != StatusPlanned {
		return ErrNotPlanned
	}

	amount := t.PlanAmount
	if c.Amount != nil {
		amount = *c.Amount
	}
	fee := t.Fee
	if c.Fee != nil {
		fee = *c.Fee
	}
	src := t.AccountID
	if c.AccountID != nil && *c.AccountID != uuid.Nil {
		src = c.AccountID
	}
	dst := t.ToAccountID
	if c.ToAccountID != nil && *c.ToAccountID != uuid.Nil {
		dst = c.ToAccountID
	}
	if t.Type != TypeTransfer {
		dst = nil
	}

	if amount.IsNegative() || fee.IsNegative() {
		return ErrNegativeAmount
	}
	if src == nil || *src == uuid.Nil {
		return ErrUnresolvedAccount
	}
	if err := checkAccounts(t.Type, StatusCompleted, src, dst); err != nil {
		return err
	}

	t.Amount = amount.Round(2)
	t.Fee = fee.Round(2)
	t.AccountID = src
	t.ToAccountID = dst
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Date != nil && !c.Date.IsZero() {
		t.Date = *c.Date
	}
	t.Status = StatusCompleted
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Patch holds the fields a standard update may change. None of them move balances.
type Patch struct {
	Description *string
	Tags        []string
	SlipImage   *string
	Status      *Status
	CategoryID  *uuid.UUID
	Date        *time.Time
	Note        *string
	PlanAmount  *decimal.Decimal
}

// Apply applies p. The only status change allowed here is planned to void;
// completing goes through Complete and nothing leaves completed or void.
func (t *Transaction) Apply(p Patch) error {
	if p.Status != nil && *p.Status != t.Status {
		if t.Status != StatusPlanned || *p.Status != StatusVoid {
			return ErrStatusChange
		}
	}
	if p.PlanAmount != nil && p.PlanAmount.IsNegative() {
		return ErrNegativeAmount
	}

	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if p.SlipImage != nil {
		t.SlipImage = *p.SlipImage
	}
	if p.CategoryID != nil {
		t.CategoryID = p.CategoryID
	}
	if p.Date != nil && !p.Date.IsZero() {
		t.Date = *p.Date
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.PlanAmount != nil {
		t.PlanAmount = p.PlanAmount.Round(2)
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel voids a planned transaction.
func (t *Transaction) Cancel() error {
	void := StatusVoid
	return t.Apply(Patch{Status: &void})
}
