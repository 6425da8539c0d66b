// Package middleware holds the fiber middleware that authenticates requests.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain/user"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey = "user"
	actorKey = "actor"
)

// ActorResolver turns a verified token into the caller it belongs to.
type ActorResolver interface {
	Actor(ctx context.Context, token *jwt.Token) (user.Actor, error)
}

// JwtProtected verifies the bearer token and stores it under "user".
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   tokenKey,
		ErrorHandler: jwtError,
	})
}

// WithActor resolves the verified token to an Actor for the handlers after it.
func WithActor(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(tokenKey).(*jwt.Token)
		if !ok {
			return unauthorized(c, "missing user context")
		}
		actor, err := resolver.Actor(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, user.ErrUserUnauthorized) {
				return unauthorized(c, "user no longer exists")
			}
			return err
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Protected returns the full chain: token verification then actor resolution.
func Protected(cfg *config.Jwt, resolver ActorResolver) []fiber.Handler {
	return []fiber.Handler{JwtProtected(cfg), WithActor(resolver)}
}

// ActorFrom returns the caller stored by WithActor.
func ActorFrom(c *fiber.Ctx) (user.Actor, bool) {
	actor, ok := c.Locals(actorKey).(user.Actor)
	return actor, ok
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) || strings.EqualFold(err.Error(), "missing or malformed JWT") {
		return problem(c, fiber.StatusBadRequest, "Missing or malformed JWT")
	}
	return unauthorized(c, "Invalid or expired JWT")
}

func unauthorized(c *fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusUnauthorized, detail)
}

func problem(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    "Unauthorized",
		"status":   status,
		"detail":   detail,
		"instance": c.OriginalURL(),
	}, "application/problem+json")
}
