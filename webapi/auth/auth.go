package auth

import (
	"errors"

	"github.com/fammee/finance/pkg/domain/user"
	authsvc "github.com/fammee/finance/pkg/service/auth"
	usersvc "github.com/fammee/finance/pkg/service/user"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers login, logout and the current-user endpoint.
func Routes(r fiber.Router, authSvc *authsvc.Service, userSvc *usersvc.Service, protected []fiber.Handler) {
	r.Post("/auth/login", Login(authSvc))
	r.Post("/auth/logout", Logout())
	r.Get("/auth/me", common.With(protected, Me(userSvc))...)
}

// Login handles user authentication and returns a JWT token.
// @Summary User login
// @Description Authenticate a family member by name and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Router /api/auth/login [post]
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		u, err := authSvc.Login(c.UserContext(), input.Name, input.Password)
		if err != nil {
			if errors.Is(err, user.ErrUserUnauthorized) {
				return common.ProblemDetailsJSON(c, "Invalid username or password", err, "Invalid username or password")
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		token, err := authSvc.GenerateToken(c.UserContext(), u)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{
			"token": token,
			"user":  toMe(u),
		})
	}
}

// Logout is a no-op for bearer tokens; clients drop the token.
// @Summary User logout
// @Tags auth
// @Success 200 {object} common.Response
// @Router /api/auth/logout [post]
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Logged out", fiber.Map{"success": true})
	}
}

// Me returns the authenticated user.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/auth/me [get]
// @Security Bearer
func Me(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Not authenticated", err)
		}
		u, err := userSvc.GetUser(c.UserContext(), actor, actor.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Not authenticated", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Current user", toMe(u))
	}
}

func toMe(u *user.User) MeResponse {
	return MeResponse{
		ID:       u.ID.String(),
		Name:     u.Name,
		Role:     string(u.Role),
		IsAdmin:  u.IsAdmin,
		Avatar:   u.Avatar,
		Color:    u.Color,
		FamilyID: u.FamilyID.String(),
	}
}
