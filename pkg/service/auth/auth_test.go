package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/fammee/finance/pkg/service/auth"
	"github.com/fammee/finance/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func setup(t *testing.T) (*auth.Service, *testutils.Seed) {
	t.Helper()
	seed := testutils.NewSeed(t)
	cfg := &config.Jwt{Secret: secret, Expiry: time.Hour}
	return auth.NewWithJWT(seed.UoW, cfg, testutils.DiscardLogger()), seed
}

func parse(t *testing.T, raw string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte(secret), nil })
	require.NoError(t, err)
	return token
}

func TestLoginAndResolveActor(t *testing.T) {
	svc, seed := setup(t)
	ctx := context.Background()

	u, err := svc.Login(ctx, seed.Child.Name, testutils.Password)
	require.NoError(t, err)
	assert.Equal(t, seed.Child.ID, u.ID)

	raw, err := svc.GenerateToken(ctx, u)
	require.NoError(t, err)
	token := parse(t, raw)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, seed.Family.ID.String(), claims["family_id"])
	assert.Equal(t, string(user.RoleChild), claims["role"])

	actor, err := svc.Actor(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.Actor{UserID: seed.Child.ID, FamilyID: seed.Family.ID, Role: user.RoleChild}, actor)
}

func TestActorSeesRoleChangeBeforeExpiry(t *testing.T) {
	svc, seed := setup(t)
	ctx := context.Background()
	raw, err := svc.GenerateToken(ctx, seed.Child)
	require.NoError(t, err)

	users, err := seed.UoW.UserRepository()
	require.NoError(t, err)
	seed.Child.Role = user.RoleParent
	require.NoError(t, users.Update(ctx, seed.Child))

	actor, err := svc.Actor(ctx, parse(t, raw))
	require.NoError(t, err)
	assert.True(t, actor.IsParent())

	require.NoError(t, users.Delete(ctx, seed.Child.ID))
	_, err = svc.Actor(ctx, parse(t, raw))
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)
}

func TestLoginFailures(t *testing.T) {
	svc, seed := setup(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, seed.Parent.Name, "wrong")
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)
	_, err = svc.Login(ctx, "nobody", testutils.Password)
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)

	noPassword, err := user.NewUser(seed.Family.ID, "fresh", user.RoleChild, "")
	require.NoError(t, err)
	users, err := seed.UoW.UserRepository()
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, noPassword))
	_, err = svc.Login(ctx, "fresh", "")
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)
}

func TestCurrentUserIDRejectsBadClaims(t *testing.T) {
	s := auth.NewJWTStrategy((repository.UnitOfWork)(nil), &config.Jwt{Secret: secret}, testutils.DiscardLogger())

	_, err := s.CurrentUserID(nil)
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)
	_, err = s.CurrentUserID(&jwt.Token{Claims: jwt.MapClaims{"user_id": "not-a-uuid"}})
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)

	id := uuid.New()
	got, err := s.CurrentUserID(&jwt.Token{Claims: jwt.MapClaims{"user_id": id.String()}})
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
