// Package importer loads transaction history from CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/money"
	"github.com/fammee/finance/pkg/repository"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Columns is the expected CSV layout.
var Columns = []string{"date", "type", "amount", "fee", "account", "toAccount", "category", "description"}

// DateLayout is the day-first date format of the date column.
const DateLayout = "02/01/2006"

// RowError describes a row that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Report summarizes an import.
type Report struct {
	Imported int
	Skipped  []RowError
	Recalc   *ledger.RecalcReport
}

// Service imports rows through the ledger so every row takes the same
// balance path as a transaction entered by hand.
type Service struct {
	uow    repository.UnitOfWork
	ledger *ledger.Service
	logger *slog.Logger
}

// New creates an importer.
func New(uow repository.UnitOfWork, ledger *ledger.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, ledger: ledger, logger: logger}
}

// Import reads r and creates one completed transaction per row as actor.
// Rows that fail to parse or resolve are skipped and reported; the rest are
// imported. Balances are recalculated afterwards.
func (s *Service) Import(ctx context.Context, actor user.Actor, r io.Reader) (*Report, error) {
	log := s.logger.With("operation", "Import", "family_id", actor.FamilyID)
	log.Debug("Import started")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	res, err := s.resolver(ctx, actor)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, rec := range records {
		line := i + 1
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Columns[0]) {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		d, err := res.draft(rec)
		if err == nil {
			_, err = s.ledger.Create(ctx, actor, d)
		}
		if err != nil {
			log.Warn("Row skipped", "line", line, "error", err)
			report.Skipped = append(report.Skipped, RowError{Line: line, Err: err})
			continue
		}
		report.Imported++
	}

	report.Recalc, err = s.ledger.Recalculate(ctx)
	if err != nil {
		return report, err
	}
	log.Info("Import finished", "imported", report.Imported, "skipped", len(report.Skipped))
	return report, nil
}

type resolver struct {
	actor      user.Actor
	owners     map[uuid.UUID]string
	accounts   []*account.Account
	categories map[string]uuid.UUID
}

func (s *Service) resolver(ctx context.Context, actor user.Actor) (*resolver, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	members, err := users.List(ctx, actor.FamilyID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	all, err := accounts.List(ctx, repository.AccountFilter{FamilyID: actor.FamilyID})
	if err != nil {
		return nil, err
	}
	categories, err := s.uow.CategoryRepository()
	if err != nil {
		return nil, err
	}
	cats, err := categories.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &resolver{
		actor:      actor,
		owners:     make(map[uuid.UUID]string, len(members)),
		accounts:   all,
		categories: make(map[string]uuid.UUID, len(cats)),
	}
	for _, m := range members {
		res.owners[m.ID] = m.Name
	}
	for _, c := range cats {
		res.categories[strings.ToLower(c.Name)] = c.ID
	}
	return res, nil
}

func (r *resolver) draft(rec []string) (transaction.Draft, error) {
	var d transaction.Draft
	if len(rec) < 5 {
		return d, domain.Validationf("expected at least 5 columns, got %d", len(rec))
	}
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	date, err := parseDate(col(0))
	if err != nil {
		return d, err
	}
	amount, err := parseAmount(col(2))
	if err != nil {
		return d, err
	}
	fee, err := parseAmount(col(3))
	if err != nil {
		return d, err
	}
	d = transaction.Draft{
		Type:        transaction.Type(strings.ToLower(col(1))),
		Status:      transaction.StatusCompleted,
		Amount:      amount,
		Fee:         fee,
		Date:        date,
		Description: col(7),
	}
	if d.AccountID, err = r.account(col(4)); err != nil {
		return d, err
	}
	if d.ToAccountID, err = r.account(col(5)); err != nil {
		return d, err
	}
	if name := col(6); name != "" {
		id, ok := r.categories[strings.ToLower(name)]
		if !ok {
			return d, domain.Validationf("unknown category %q", name)
		}
		d.CategoryID = &id
	}
	return d, nil
}

// account resolves a name to an account. "owner:name" selects a member's
// account; a bare name prefers the caller's own account and otherwise must
// be unique in the family.
func (r *resolver) account(ref string) (*uuid.UUID, error) {
	if ref == "" {
		return nil, nil
	}
	owner, name, qualified := strings.Cut(ref, ":")
	if !qualified {
		owner, name = "", ref
	}

	var matches []*account.Account
	for _, a := range r.accounts {
		if !strings.EqualFold(a.Name, name) {
			continue
		}
		if qualified && !strings.EqualFold(r.owners[a.UserID], owner) {
			continue
		}
		if !qualified && a.UserID == r.actor.UserID {
			return &a.ID, nil
		}
		matches = append(matches, a)
	}
	switch len(matches) {
	case 0:
		return nil, domain.Validationf("unknown account %q", ref)
	case 1:
		return &matches[0].ID, nil
	default:
		return nil, domain.Validationf("account %q is ambiguous, use owner:name", ref)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, want DD/MM/YYYY", s)
	}
	return t, nil
}

// parseAmount accepts thousands separators such as "1,000.50".
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w %q", domain.ErrValidation, err, s)
	}
	return v, nil
}
