// Command cli runs maintenance tasks against the family finance database.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fammee/finance/infra"
	"github.com/fammee/finance/infra/initializer"
	"github.com/fammee/finance/infra/migrations"
	"github.com/fammee/finance/pkg/app"
	"github.com/fammee/finance/pkg/config"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]

Commands:
  recalc                                         recompute every balance from transactions
  reconcile <account-id> <balance> <user> [note] set an account balance and record it
  import <user> <file.csv>                       import completed transactions
  set-passwords                                  prompt for members without a password
  migrate up|down                                apply or roll back the postgres schema`

var (
	errUsage = errors.New(usage)
	stdin    = bufio.NewReader(os.Stdin)
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	if args[0] == "migrate" {
		return migrate(cfg, args[1:])
	}

	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()

	c := &cli{
		app:      app.New(deps, cfg),
		out:      os.Stdout,
		password: promptPassword,
	}
	return c.dispatch(context.Background(), args)
}

func migrate(cfg *config.App, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if infra.IsSQLite(cfg.DB.Url) {
		return errors.New("sqlite schemas are created on startup; migrate targets postgres")
	}
	switch args[0] {
	case "up":
		return migrations.Up(cfg.DB.Url)
	case "down":
		return migrations.Down(cfg.DB.Url)
	}
	return errUsage
}

func promptPassword(name string) (string, error) {
	fmt.Fprintf(os.Stdout, "Password for %s (empty to skip): ", name)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
