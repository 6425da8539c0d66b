package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/repository"
	"github.com/fammee/finance/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Strategy authenticates a family member and issues the credential the
// boundary later resolves back to an Actor.
type Strategy interface {
	Login(ctx context.Context, name, password string) (*user.User, error)
	GenerateToken(ctx context.Context, u *user.User) (string, error)
	CurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

// Service is the authentication entry point used by the web boundary.
type Service struct {
	uow      repository.UnitOfWork
	strategy Strategy
	logger   *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	strategy Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, strategy: strategy, logger: logger}
}

func NewWithJWT(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return New(uow, NewJWTStrategy(uow, cfg, logger), logger)
}

// Login checks name and password.
func (s *Service) Login(
	ctx context.Context,
	name, password string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Login")
	log.Debug("Login called", "name", name)
	u, err = s.strategy.Login(ctx, name, password)
	if err != nil {
		log.Error("Login failed", "name", name, "error", err)
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

func (s *Service) GenerateToken(
	ctx context.Context,
	u *user.User,
) (string, error) {
	log := s.logger.With("userID", u.ID)
	log.Debug("GenerateToken called")
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful")
	return token, nil
}

// Actor resolves a verified token to the current state of its user, so a
// role change or removal takes effect before the token expires.
func (s *Service) Actor(ctx context.Context, token *jwt.Token) (user.Actor, error) {
	u, err := s.CurrentUser(ctx, token)
	if err != nil {
		return user.Actor{}, err
	}
	return user.ActorOf(u), nil
}

// CurrentUser loads the user a token was issued to.
func (s *Service) CurrentUser(ctx context.Context, token *jwt.Token) (*user.User, error) {
	id, err := s.strategy.CurrentUserID(token)
	if err != nil {
		return nil, err
	}
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, user.ErrUserUnauthorized
		}
		return nil, err
	}
	return u, nil
}

// JWTStrategy implements Strategy with HS256 tokens.
type JWTStrategy struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

func NewJWTStrategy(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *JWTStrategy {
	return &JWTStrategy{uow: uow, cfg: cfg, logger: logger}
}

func (s *JWTStrategy) GenerateToken(
	ctx context.Context,
	u *user.User,
) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["family_id"] = u.FamilyID.String()
	claims["role"] = string(u.Role)
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

// dummyHash keeps the response time of an unknown name close to a wrong password.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

func (s *JWTStrategy) Login(
	ctx context.Context,
	name, password string,
) (*user.User, error) {
	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = utils.CheckPasswordHash(password, dummyHash)
		return nil, user.ErrUserUnauthorized
	}
	if !u.CheckPassword(password) {
		return nil, user.ErrUserUnauthorized
	}
	return u, nil
}

func (s *JWTStrategy) CurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return id, nil
}
