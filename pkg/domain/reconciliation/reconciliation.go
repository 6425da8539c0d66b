package reconciliation

import (
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountRequired is returned when no account is given.
	ErrAccountRequired = domain.NewKind(domain.ErrValidation, "accountId is required")
	// ErrNewBalanceRequired is returned when no target balance is given.
	ErrNewBalanceRequired = domain.NewKind(domain.ErrValidation, "newBalance is required")
	// ErrPerformerRequired is returned when no performing user is given.
	ErrPerformerRequired = domain.NewKind(domain.ErrValidation, "performedById is required")
)

// Reconciliation is an immutable audit record of a manual balance correction.
type Reconciliation struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"accountId"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	Difference      decimal.Decimal `json:"difference"`
	Note            string          `json:"note,omitempty"`
	PerformedByID   uuid.UUID       `json:"performedById"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Request is the reconcile input. NewBalance is a pointer so zero and absent differ.
type Request struct {
	AccountID     uuid.UUID
	NewBalance    *decimal.Decimal
	PerformedByID uuid.UUID
	Note          string
}

// Validate checks that every required field is present.
func (r Request) Validate() error {
	if r.AccountID == uuid.Nil {
		return ErrAccountRequired
	}
	if r.NewBalance == nil {
		return ErrNewBalanceRequired
	}
	if r.PerformedByID == uuid.Nil {
		return ErrPerformerRequired
	}
	return nil
}

// New records a correction from previous to r.NewBalance.
func New(r Request, previous decimal.Decimal) (*Reconciliation, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	target := r.NewBalance.Round(2)
	return &Reconciliation{
		ID:              uuid.New(),
		AccountID:       r.AccountID,
		PreviousBalance: previous,
		NewBalance:      target,
		Difference:      target.Sub(previous),
		Note:            r.Note,
		PerformedByID:   r.PerformedByID,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
