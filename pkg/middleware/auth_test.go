package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwt = &config.Jwt{Secret: "middleware-secret", Expiry: time.Hour}

type resolverFunc func(ctx context.Context, token *jwt.Token) (user.Actor, error)

func (f resolverFunc) Actor(ctx context.Context, token *jwt.Token) (user.Actor, error) {
	return f(ctx, token)
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJwt.Secret))
	require.NoError(t, err)
	return raw
}

func newApp(resolver ActorResolver) *fiber.App {
	app := fiber.New()
	app.Get("/", append(Protected(testJwt, resolver), func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(actor.UserID.String())
	})...)
	return app
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestProtected_ResolvesActor(t *testing.T) {
	id := uuid.New()
	app := newApp(resolverFunc(func(_ context.Context, token *jwt.Token) (user.Actor, error) {
		assert.Equal(t, id.String(), token.Claims.(jwt.MapClaims)["user_id"])
		return user.Actor{UserID: id, Role: user.RoleChild}, nil
	}))
	resp := get(t, app, sign(t, jwt.MapClaims{"user_id": id.String(), "exp": time.Now().Add(time.Minute).Unix()}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtected_Rejections(t *testing.T) {
	app := newApp(resolverFunc(func(context.Context, *jwt.Token) (user.Actor, error) {
		return user.Actor{}, user.ErrUserUnauthorized
	}))

	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "").StatusCode)

	expired := sign(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(-time.Minute).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, expired).StatusCode)

	valid := sign(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(time.Minute).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, valid).StatusCode)
}

func TestJwtError_Malformed(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("Missing or malformed JWT"))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
