// Package events defines the ledger events emitted after a unit of work commits.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an event on the bus.
type EventType string

func (t EventType) String() string { return string(t) }

const (
	TransactionCreated   EventType = "transaction.created"
	TransactionCompleted EventType = "transaction.completed"
	TransactionUpdated   EventType = "transaction.updated"
	TransactionDeleted   EventType = "transaction.deleted"
	BudgetArchived       EventType = "budget.archived"
	AccountReconciled    EventType = "account.reconciled"
	BalancesRecalculated EventType = "balances.recalculated"
)

// Event is anything published on the bus.
type Event interface {
	Type() string
}

// Ledger is the part every ledger event shares. Accounts lists the accounts
// whose balance the operation may have changed.
type Ledger struct {
	FamilyID   uuid.UUID   `json:"familyId"`
	UserID     uuid.UUID   `json:"userId"`
	Accounts   []uuid.UUID `json:"accounts,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewLedger stamps a Ledger with the current time.
func NewLedger(familyID, userID uuid.UUID, accounts ...uuid.UUID) Ledger {
	return Ledger{FamilyID: familyID, UserID: userID, Accounts: accounts, OccurredAt: time.Now().UTC()}
}

// Family returns the family the event belongs to.
func (l Ledger) Family() uuid.UUID { return l.FamilyID }

// Scoped is implemented by every ledger event.
type Scoped interface {
	Event
	Family() uuid.UUID
}

type TransactionCreatedEvent struct {
	Ledger
	TransactionID uuid.UUID       `json:"transactionId"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
}

func (e *TransactionCreatedEvent) Type() string { return TransactionCreated.String() }

type TransactionCompletedEvent struct {
	Ledger
	TransactionID uuid.UUID       `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
}

func (e *TransactionCompletedEvent) Type() string { return TransactionCompleted.String() }

type TransactionUpdatedEvent struct {
	Ledger
	TransactionID uuid.UUID `json:"transactionId"`
}

func (e *TransactionUpdatedEvent) Type() string { return TransactionUpdated.String() }

type TransactionDeletedEvent struct {
	Ledger
	TransactionID uuid.UUID `json:"transactionId"`
	Reverted      bool      `json:"reverted"`
}

func (e *TransactionDeletedEvent) Type() string { return TransactionDeleted.String() }

type BudgetArchivedEvent struct {
	Ledger
	BudgetID    uuid.UUID `json:"budgetId"`
	VoidedItems int64     `json:"voidedItems"`
}

func (e *BudgetArchivedEvent) Type() string { return BudgetArchived.String() }

type AccountReconciledEvent struct {
	Ledger
	ReconciliationID uuid.UUID       `json:"reconciliationId"`
	Difference       decimal.Decimal `json:"difference"`
}

func (e *AccountReconciledEvent) Type() string { return AccountReconciled.String() }

// BalancesRecalculatedEvent has no family: recalculation spans every account.
type BalancesRecalculatedEvent struct {
	Ledger
	AccountCount int `json:"accountCount"`
	Drifted      int `json:"drifted"`
}

func (e *BalancesRecalculatedEvent) Type() string { return BalancesRecalculated.String() }

// EventTypes builds empty events for decoding bus payloads.
var EventTypes = map[string]func() Event{
	TransactionCreated.String():   func() Event { return &TransactionCreatedEvent{} },
	TransactionCompleted.String(): func() Event { return &TransactionCompletedEvent{} },
	TransactionUpdated.String():   func() Event { return &TransactionUpdatedEvent{} },
	TransactionDeleted.String():   func() Event { return &TransactionDeletedEvent{} },
	BudgetArchived.String():       func() Event { return &BudgetArchivedEvent{} },
	AccountReconciled.String():    func() Event { return &AccountReconciledEvent{} },
	BalancesRecalculated.String(): func() Event { return &BalancesRecalculatedEvent{} },
}

// All lists every ledger event type.
func All() []EventType {
	return []EventType{
		TransactionCreated, TransactionCompleted, TransactionUpdated, TransactionDeleted,
		BudgetArchived, AccountReconciled, BalancesRecalculated,
	}
}
