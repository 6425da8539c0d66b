// Package webapi provides the HTTP boundary of the family finance API.
// It is organized into sub-packages per resource:
//   - auth: login and the current user
//   - user: family members
//   - account, transaction, budget, reconciliation: the ledger
//   - category: the category catalog
//   - admin: maintenance
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/fammee/finance/pkg/app"
	"github.com/fammee/finance/pkg/middleware"
	accountweb "github.com/fammee/finance/webapi/account"
	adminweb "github.com/fammee/finance/webapi/admin"
	authweb "github.com/fammee/finance/webapi/auth"
	budgetweb "github.com/fammee/finance/webapi/budget"
	categoryweb "github.com/fammee/finance/webapi/category"
	"github.com/fammee/finance/webapi/common"
	reconweb "github.com/fammee/finance/webapi/reconciliation"
	txweb "github.com/fammee/finance/webapi/transaction"
	userweb "github.com/fammee/finance/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gofiber/swagger"
)

const defaultIdempotencyTTL = 10 * time.Minute

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	// Uses X-Forwarded-For when behind a proxy, then X-Real-IP, then the peer IP.
	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.MaxRequests,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: clientIP,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Family finance API is running")
	})

	// Debug endpoint to list all routes
	fiberApp.Get("/debug/routes", func(c *fiber.Ctx) error {
		routes := fiberApp.GetRoutes()
		routeList := make([]map[string]string, 0, len(routes))
		for _, route := range routes {
			if route.Path != "" {
				routeList = append(routeList, map[string]string{
					"method": route.Method,
					"path":   route.Path,
				})
			}
		}
		return c.JSON(routeList)
	})

	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	idempotency := common.Idempotency(common.NewIdempotencyStore(ttl), a.Deps.Logger)
	protected := middleware.Protected(cfg.Auth.Jwt, a.AuthService)

	api := fiberApp.Group("/api")
	authweb.Routes(api, a.AuthService, a.UserService, protected)
	userweb.Routes(api, a.UserService, protected)
	accountweb.Routes(api, a.AccountService, protected)
	txweb.Routes(api, a.LedgerService, protected, idempotency)
	budgetweb.Routes(api, a.BudgetService, protected)
	reconweb.Routes(api, a.ReconciliationService, protected, idempotency)
	categoryweb.Routes(api, a.CategoryService, protected)
	adminweb.Routes(api, a.LedgerService, protected)
	return fiberApp
}

func clientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
