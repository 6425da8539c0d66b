package budget

import (
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrBudgetNotFound is returned when a budget cannot be found.
	ErrBudgetNotFound = domain.NewKind(domain.ErrNotFound, "budget not found")
	// ErrNotCreator is returned when someone other than the creator edits a budget.
	ErrNotCreator = domain.NewKind(domain.ErrConflict, "only the creator can edit this budget")
	// ErrTitleRequired is returned when a budget has no title.
	ErrTitleRequired = domain.NewKind(domain.ErrValidation, "budget title is required")
	// ErrCreatorRequired is returned when a budget has no creator.
	ErrCreatorRequired = domain.NewKind(domain.ErrValidation, "createdById is required")
	// ErrInvalidPeriod is returned for a period outside monthly/one_time.
	ErrInvalidPeriod = domain.NewKind(domain.ErrValidation, "invalid budget period")
	// ErrInvalidRange is returned when the end date precedes the start date.
	ErrInvalidRange = domain.NewKind(domain.ErrValidation, "endDate must not precede startDate")
	// ErrArchived is returned when changing an archived budget.
	ErrArchived = domain.NewKind(domain.ErrValidation, "budget is archived")
	// ErrNotItem is returned when a transaction does not belong to the budget.
	ErrNotItem = domain.NewKind(domain.ErrNotFound, "budget item not found")
	// ErrReactivate is returned when a cancelled item is asked to return to pending.
	ErrReactivate = domain.NewKind(domain.ErrValidation, "a cancelled item cannot be reactivated")
)

// Period is the budget cadence.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodOneTime Period = "one_time"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	return p == PeriodMonthly || p == PeriodOneTime
}

// Status is the budget lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Budget is a planning envelope whose items are transactions linked by budgetId.
type Budget struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Limit       decimal.Decimal `json:"limit"`
	Period      Period          `json:"period"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Color       string          `json:"color,omitempty"`
	Status      Status          `json:"status"`
	CreatedByID uuid.UUID       `json:"createdById"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Draft is the input for a new budget.
type Draft struct {
	Title       string
	Description string
	Limit       decimal.Decimal
	Period      Period
	StartDate   *time.Time
	EndDate     *time.Time
	Icon        string
	Color       string
	CreatedByID uuid.UUID
}

// New validates d and returns an active budget.
func New(d Draft) (*Budget, error) {
	if d.CreatedByID == uuid.Nil {
		return nil, ErrCreatorRequired
	}
	if d.Title == "" {
		return nil, ErrTitleRequired
	}
	if d.Period == "" {
		d.Period = PeriodOneTime
	}
	if !d.Period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if d.Limit.IsNegative() {
		return nil, transaction.ErrNegativeAmount
	}
	if err := checkRange(d.StartDate, d.EndDate); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Budget{
		ID:          uuid.New(),
		Title:       d.Title,
		Description: d.Description,
		Limit:       d.Limit.Round(2),
		Period:      d.Period,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Icon:        d.Icon,
		Color:       d.Color,
		Status:      StatusActive,
		CreatedByID: d.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidRange
	}
	return nil
}

// Patch holds the editable budget fields.
type Patch struct {
	Title       *string
	Description *string
	Limit       *decimal.Decimal
	Period      *Period
	StartDate   *time.Time
	EndDate     *time.Time
	Icon        *string
	Color       *string
}

// Apply applies p on behalf of editorID. Only the creator may edit.
func (b *Budget) Apply(editorID uuid.UUID, p Patch) error {
	if editorID != b.CreatedByID {
		return ErrNotCreator
	}
	if p.Title != nil && *p.Title == "" {
		return ErrTitleRequired
	}
	if p.Period != nil && !p.Period.Valid() {
		return ErrInvalidPeriod
	}
	if p.Limit != nil && p.Limit.IsNegative() {
		return transaction.ErrNegativeAmount
	}
	start, end := b.StartDate, b.EndDate
	if p.StartDate != nil {
		start = p.StartDate
	}
	if p.EndDate != nil {
		end = p.EndDate
	}
	if err := checkRange(start, end); err != nil {
		return err
	}

	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Limit != nil {
		b.Limit = p.Limit.Round(2)
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.Icon != nil {
		b.Icon = *p.Icon
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
	b.StartDate, b.EndDate = start, end
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Archive marks the budget archived. Voiding its pending items is the caller's job.
func (b *Budget) Archive() {
	b.Status = StatusArchived
	b.UpdatedAt = time.Now().UTC()
}

// ItemView is a budget item as presented to clients.
type ItemView struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	PlannedAmount decimal.Decimal        `json:"plannedAmount"`
	ActualAmount  decimal.Decimal        `json:"actualAmount"`
	Date          time.Time              `json:"date"`
	Status        transaction.ItemStatus `json:"status"`
	Type          transaction.Type       `json:"type"`
	CategoryID    *uuid.UUID             `json:"categoryId,omitempty"`
	AccountID     *uuid.UUID             `json:"accountId,omitempty"`
	ToAccountID   *uuid.UUID             `json:"toAccountId,omitempty"`
	Tags          []string               `json:"tags"`
}

// Item derives the item view of t. A transaction booked straight to completed
// without a plan reports its actual amount as planned.
func Item(t *transaction.Transaction) ItemView {
	planned := t.PlanAmount
	if planned.IsZero() {
		planned = t.Amount
	}
	return ItemView{
		ID:            t.ID,
		Name:          t.Description,
		PlannedAmount: planned,
		ActualAmount:  t.Amount,
		Date:          t.Date,
		Status:        t.Status.ItemStatus(),
		Type:          t.Type,
		CategoryID:    t.CategoryID,
		AccountID:     t.AccountID,
		ToAccountID:   t.ToAccountID,
		Tags:          t.Tags,
	}
}

// Summary totals the items of a budget.
type Summary struct {
	Planned   decimal.Decimal `json:"planned"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Pending   int             `json:"pending"`
	Done      int             `json:"done"`
	Cancelled int             `json:"cancelled"`
}

// Summarize totals items against the limit. Cancelled items count toward nothing
// but their tally.
func Summarize(limit decimal.Decimal, items []ItemView) Summary {
	s := Summary{Planned: decimal.Zero, Spent: decimal.Zero}
	for _, it := range items {
		switch it.Status {
		case transaction.ItemPending:
			s.Pending++
			s.Planned = s.Planned.Add(it.PlannedAmount)
		case transaction.ItemDone:
			s.Done++
			s.Planned = s.Planned.Add(it.PlannedAmount)
			s.Spent = s.Spent.Add(it.ActualAmount)
		case transaction.ItemCancelled:
			s.Cancelled++
		}
	}
	s.Remaining = limit.Sub(s.Spent)
	return s
}
