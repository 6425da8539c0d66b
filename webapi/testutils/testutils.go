// Package testutils builds a fully wired fiber app over a seeded sqlite
// database for handler tests.
package testutils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/app"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain/user"
	seedutils "github.com/fammee/finance/pkg/testutils"
	"github.com/fammee/finance/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// TestApp is the HTTP app with a seeded family and a token for each member.
type TestApp struct {
	*seedutils.Seed
	App         *fiber.App
	Services    *app.App
	Bus         *eventbus.MemoryEventBus
	ParentToken string
	ChildToken  string
}

// Config returns the configuration handler tests run with.
func Config() *config.App {
	return &config.App{
		Env:            "test",
		Auth:           &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		RateLimit:      &config.RateLimit{},
		IdempotencyTTL: time.Minute,
	}
}

// NewTestApp seeds a family and wires every service with cfg, or Config()
// when cfg is nil.
func NewTestApp(t *testing.T, cfg *config.App) *TestApp {
	t.Helper()
	if cfg == nil {
		cfg = Config()
	}
	seed := seedutils.NewSeed(t)
	logger := seedutils.DiscardLogger()
	bus := eventbus.NewWithMemory(logger)
	services := app.New(config.Deps{
		Uow:      seed.UoW,
		EventBus: bus,
		Logger:   logger,
	}, cfg)
	ta := &TestApp{
		Seed:     seed,
		App:      webapi.SetupApp(services),
		Services: services,
		Bus:      bus,
	}
	ta.ParentToken = ta.Token(t, seed.Parent)
	ta.ChildToken = ta.Token(t, seed.Child)
	return ta
}

// Token issues a bearer token for u.
func (a *TestApp) Token(t *testing.T, u *user.User) string {
	t.Helper()
	token, err := a.Services.AuthService.GenerateToken(context.Background(), u)
	require.NoError(t, err)
	return token
}

// Do sends a request with an optional JSON body and bearer token.
func (a *TestApp) Do(method, path, body, token string) *http.Response {
	return seedutils.MakeRequest(a.App, method, path, body, token)
}

// DoWithHeaders is Do with extra request headers.
func (a *TestApp) DoWithHeaders(method, path, body, token string, headers map[string]string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := a.App.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

// Envelope is the decoded success response.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Decode reads and closes resp, decoding the body into T.
func Decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
