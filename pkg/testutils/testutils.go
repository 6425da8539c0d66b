// Package testutils provides database, seeding and HTTP helpers shared by
// service and handler tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	infrarepo "github.com/fammee/finance/infra/repository"
	"github.com/fammee/finance/infra/migrations"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/category"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/fammee/finance/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the login password of every seeded user.
const Password = "password123"

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB opens a fresh in-memory sqlite database with every table migrated.
// Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(infrarepo.Models()...))
	return db
}

// Seed is a family with one parent and one child, ready for tests.
type Seed struct {
	DB     *gorm.DB
	UoW    repository.UnitOfWork
	Family *user.Family
	Parent *user.User
	Child  *user.User
}

// NewSeed creates a database and a family in it.
func NewSeed(t *testing.T) *Seed {
	t.Helper()
	db := NewTestDB(t)
	s := &Seed{DB: db, UoW: infrarepo.NewUoW(db)}
	s.Family, s.Parent, s.Child = s.NewFamily(t, "Test family")
	return s
}

// NewFamily adds another family with a parent and a child to the database.
func (s *Seed) NewFamily(t *testing.T, name string) (*user.Family, *user.User, *user.User) {
	t.Helper()
	ctx := context.Background()
	users, err := s.UoW.UserRepository()
	require.NoError(t, err)

	f, err := user.NewFamily(name)
	require.NoError(t, err)
	require.NoError(t, users.CreateFamily(ctx, f))

	suffix := uuid.NewString()[:8]
	parent, err := user.NewUser(f.ID, "parent_"+suffix, user.RoleParent, Password)
	require.NoError(t, err)
	child, err := user.NewUser(f.ID, "child_"+suffix, user.RoleChild, Password)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, parent))
	require.NoError(t, users.Create(ctx, child))
	return f, parent, child
}

// Account creates an account owned by owner with a starting balance.
func (s *Seed) Account(t *testing.T, owner *user.User, name, balance string) *account.Account {
	t.Helper()
	a, err := account.New().
		WithUserID(owner.ID).
		WithName(name).
		WithBalance(decimal.RequireFromString(balance)).
		Build()
	require.NoError(t, err)
	repo, err := s.UoW.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

// Category creates a category in a fresh group of the given type.
func (s *Seed) Category(t *testing.T, name string, typ transaction.Type) *category.Category {
	t.Helper()
	ctx := context.Background()
	repo, err := s.UoW.CategoryRepository()
	require.NoError(t, err)
	g, err := category.NewGroup(name+" group", typ)
	require.NoError(t, err)
	require.NoError(t, repo.CreateGroup(ctx, g))
	c, err := category.New(name, g.ID, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))
	return c
}

// Balance reads the stored balance of an account.
func (s *Seed) Balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	repo, err := s.UoW.AccountRepository()
	require.NoError(t, err)
	a, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

// Actor returns the actor for u.
func Actor(u *user.User) user.Actor {
	return user.ActorOf(u)
}

// MakeRequest sends a request through app.Test. A non-empty body is sent as JSON.
func MakeRequest(app *fiber.App, method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

// StartPostgres starts a postgres container, applies the migrations and
// returns an open connection. It skips unless INTEGRATION=1.
func StartPostgres(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("set INTEGRATION=1 to run postgres integration tests")
	}
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("fammee"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(dsn))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, dsn
}

// NewPostgresSeed is NewSeed over a StartPostgres database.
func NewPostgresSeed(t *testing.T) *Seed {
	t.Helper()
	db, _ := StartPostgres(t)
	s := &Seed{DB: db, UoW: infrarepo.NewUoW(db)}
	s.Family, s.Parent, s.Child = s.NewFamily(t, "Test family")
	return s
}
