package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fammee/finance/pkg/app"
	"github.com/fammee/finance/pkg/domain/reconciliation"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/money"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

var (
	ok    = color.New(color.FgGreen)
	warn  = color.New(color.FgYellow)
	bad   = color.New(color.FgRed, color.Bold)
	faint = color.New(color.Faint)
)

type cli struct {
	app      *app.App
	out      io.Writer
	password func(name string) (string, error)
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "recalc":
		return c.recalc(ctx)
	case "reconcile":
		if len(args) < 4 || len(args) > 5 {
			return errUsage
		}
		note := ""
		if len(args) == 5 {
			note = args[4]
		}
		return c.reconcile(ctx, args[1], args[2], args[3], note)
	case "import":
		if len(args) != 3 {
			return errUsage
		}
		return c.importFile(ctx, args[1], args[2])
	case "set-passwords":
		return c.setPasswords(ctx)
	}
	return errUsage
}

func (c *cli) recalc(ctx context.Context) error {
	report, err := c.app.LedgerService.Recalculate(ctx)
	if err != nil {
		return err
	}
	for _, b := range report.Accounts {
		drift := b.Drift()
		if drift.IsZero() {
			faint.Fprintf(c.out, "  %-24s %12s\n", b.Name, b.Recomputed.StringFixed(2))
			continue
		}
		warn.Fprintf(c.out, "  %-24s %12s (was %s, drift %s)\n",
			b.Name, b.Recomputed.StringFixed(2), b.Previous.StringFixed(2), drift.StringFixed(2))
	}
	if report.Drifted == 0 {
		ok.Fprintf(c.out, "%d accounts recalculated, no drift\n", len(report.Accounts))
		return nil
	}
	bad.Fprintf(c.out, "%d accounts recalculated, %d had drifted\n", len(report.Accounts), report.Drifted)
	return nil
}

func (c *cli) reconcile(ctx context.Context, accountArg, balanceArg, performer, note string) error {
	accountID, err := uuid.Parse(accountArg)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", accountArg, err)
	}
	balance, err := money.Parse(balanceArg)
	if err != nil {
		return fmt.Errorf("invalid balance %q: %w", balanceArg, err)
	}
	u, err := c.member(ctx, performer)
	if err != nil {
		return err
	}
	rec, err := c.app.ReconciliationService.Reconcile(ctx, user.ActorOf(u), reconciliation.Request{
		AccountID:     accountID,
		NewBalance:    &balance,
		PerformedByID: u.ID,
		Note:          note,
	})
	if err != nil {
		return err
	}
	ok.Fprintf(c.out, "Balance set to %s (was %s, difference %s)\n",
		rec.NewBalance.StringFixed(2), rec.PreviousBalance.StringFixed(2), rec.Difference.StringFixed(2))
	return nil
}

func (c *cli) importFile(ctx context.Context, name, path string) error {
	u, err := c.member(ctx, name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	report, err := c.app.ImporterService.Import(ctx, user.ActorOf(u), f)
	if err != nil {
		return err
	}
	for _, row := range report.Skipped {
		warn.Fprintf(c.out, "  skipped %s\n", row.Error())
	}
	ok.Fprintf(c.out, "%d imported, %d skipped\n", report.Imported, len(report.Skipped))
	return nil
}

func (c *cli) setPasswords(ctx context.Context) error {
	n, err := c.app.UserService.SetMissingPasswords(ctx, func(u *user.User) (string, error) {
		return c.password(u.Name)
	})
	if err != nil {
		return err
	}
	ok.Fprintf(c.out, "%d passwords set\n", n)
	return nil
}

func (c *cli) member(ctx context.Context, name string) (*user.User, error) {
	users, err := c.app.Deps.Uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", name, err)
	}
	return u, nil
}
