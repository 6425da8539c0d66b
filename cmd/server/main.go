package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/fammee/finance/infra/initializer"
	"github.com/fammee/finance/pkg/app"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/webapi"
)

// @title Family Finance API
// @version 1.0.0
// @description Shared household ledger: accounts, transactions, budgets and reconciliations.
// @contact.name API Support
// @license.name MIT
// @host localhost:3000
// @BasePath /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()

	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
