package initializer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fammee/finance/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.App {
	return &config.App{
		Env:      "test",
		Log:      &config.Log{Level: 8, Format: "text"},
		DB:       &config.DB{Url: "sqlite://" + filepath.Join(t.TempDir(), "fammee.db")},
		Redis:    &config.Redis{},
		EventBus: &config.EventBus{Driver: "memory"},
		Cache:    &config.Cache{Driver: "memory", TTL: time.Minute},
	}
}

func TestInitializeDependencies_SQLite(t *testing.T) {
	deps, cleanup, err := InitializeDependencies(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NotNil(t, deps.Uow)
	require.NotNil(t, deps.EventBus)
	require.NotNil(t, deps.AccountCache)

	users, err := deps.Uow.UserRepository()
	require.NoError(t, err)
	list, err := users.ListWithoutPassword(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInitializeDependencies_UnknownDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.EventBus.Driver = "carrier-pigeon"
	_, _, err := InitializeDependencies(cfg)
	assert.ErrorContains(t, err, "unknown event bus driver")

	cfg = testConfig(t)
	cfg.Cache.Driver = "floppy"
	_, _, err = InitializeDependencies(cfg)
	assert.ErrorContains(t, err, "unknown cache driver")

	cfg = testConfig(t)
	cfg.DB.Url = ""
	_, _, err = InitializeDependencies(cfg)
	assert.Error(t, err)
}
