package common

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{account.ErrAccountNotFound, http.StatusNotFound},
		{transaction.ErrSameAccount, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", transaction.ErrNegativeAmount), http.StatusBadRequest},
		{account.ErrAccountInUse, http.StatusConflict},
		{domain.NewKind(domain.ErrAlreadyExists, "dup"), http.StatusConflict},
		{transaction.ErrUnresolvedAccount, http.StatusUnprocessableEntity},
		{budget.ErrNotCreator, http.StatusForbidden},
		{user.ErrParentOnly, http.StatusForbidden},
		{user.ErrUserUnauthorized, http.StatusUnauthorized},
		{fiber.ErrTooManyRequests, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorToStatusCode(tt.err), tt.err.Error())
	}
}

func TestParseHelpers(t *testing.T) {
	d, err := ParseDate("2025-03-04", "date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2025-03-04T10:30:00+02:00", "date")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())
	assert.Equal(t, time.UTC, d.Location())

	d, err = ParseDate("", "date")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("04/03/2025", "date")
	assert.ErrorIs(t, err, domain.ErrValidation)

	ids, err := ParseIDs("6f1c1b1e-0000-4000-8000-000000000001, 6f1c1b1e-0000-4000-8000-000000000002", "ids")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	_, err = ParseIDs("6f1c1b1e-0000-4000-8000-000000000001,x", "ids")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, []string{"a", "b"}, SplitList(" a,,b ,"))
	assert.Nil(t, SplitList(""))
}

func TestProblemDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/nf", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Account not found", account.ErrAccountNotFound)
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Internal Server Error", errors.New("dsn=postgres://secret"))
	})
	app.Post("/validate", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[struct {
			Name string `json:"name" validate:"required"`
		}](c)
		if input == nil {
			return err
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "ok", input.Name)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, MIMEProblemJSON, resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "secret")

	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"Name":"required"`)
}

func TestIdempotency(t *testing.T) {
	var calls atomic.Int32
	store := NewIdempotencyStore(time.Minute)
	app := fiber.New()
	app.Post("/pay", Idempotency(store, slog.New(slog.NewTextHandler(io.Discard, nil))), func(c *fiber.Ctx) error {
		n := calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return SuccessResponseJSON(c, fiber.StatusCreated, "paid", n)
	})
	app.Post("/fail", Idempotency(store, slog.New(slog.NewTextHandler(io.Discard, nil))), func(c *fiber.Ctx) error {
		calls.Add(1)
		return ProblemDetailsJSON(c, "Invalid", transaction.ErrSameAccount)
	})

	send := func(path, key string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	var wg sync.WaitGroup
	bodies := make([]string, 4)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := send("/pay", "k1")
			b, _ := io.ReadAll(resp.Body)
			bodies[i] = string(b)
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
	for _, b := range bodies {
		assert.Equal(t, bodies[0], b)
	}

	resp := send("/pay", "k1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(HeaderIdempotentReplayed))
	assert.EqualValues(t, 1, calls.Load())

	send("/pay", "")
	send("/pay", "k2")
	assert.EqualValues(t, 3, calls.Load())

	send("/fail", "k3")
	send("/fail", "k3")
	assert.EqualValues(t, 5, calls.Load(), "failures are not stored")

	now := time.Now()
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	send("/pay", "k1")
	assert.EqualValues(t, 6, calls.Load(), "expired entries run again")
}
