package webapi_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndRoutes(t *testing.T) {
	a := testutils.NewTestApp(t, nil)

	resp := a.Do(fiber.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "running")

	resp = a.Do(fiber.MethodGet, "/debug/routes", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	routes := testutils.Decode[[]map[string]string](t, resp)
	assert.Contains(t, routes, map[string]string{"method": fiber.MethodPost, "path": "/api/transactions"})
	assert.Contains(t, routes, map[string]string{"method": fiber.MethodPost, "path": "/api/budgets/:id/items/:itemId/complete"})

	resp = a.Do(fiber.MethodGet, "/api/nowhere", "", a.ParentToken)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := testutils.Config()
	cfg.RateLimit = &config.RateLimit{MaxRequests: 5, Window: time.Second}
	a := testutils.NewTestApp(t, cfg)

	for i := 0; i < 6; i++ {
		resp := a.DoWithHeaders(fiber.MethodGet, "/", "", "", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"})
		_ = resp.Body.Close()
		if i < 5 {
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Expected OK for request %d", i+1)
		} else {
			assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode, "Expected Too Many Requests for request %d", i+1)
		}
	}

	// Another client has its own budget.
	resp := a.DoWithHeaders(fiber.MethodGet, "/", "", "", map[string]string{"X-Real-IP": "10.0.0.9"})
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	time.Sleep(1100 * time.Millisecond)
	resp = a.DoWithHeaders(fiber.MethodGet, "/", "", "", map[string]string{"X-Forwarded-For": "10.0.0.1"})
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Expected OK after rate limit reset")
}
