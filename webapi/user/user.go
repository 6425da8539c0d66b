package user

import (
	"github.com/fammee/finance/pkg/domain/user"
	usersvc "github.com/fammee/finance/pkg/service/user"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers family member management.
func Routes(r fiber.Router, userSvc *usersvc.Service, protected []fiber.Handler) {
	r.Get("/users", common.With(protected, ListUsers(userSvc))...)
	r.Post("/users", common.With(protected, CreateUser(userSvc))...)
	r.Get("/users/:id", common.With(protected, GetUser(userSvc))...)
	r.Patch("/users/:id", common.With(protected, UpdateUser(userSvc))...)
	r.Delete("/users/:id", common.With(protected, DeleteUser(userSvc))...)
}

// ListUsers returns the members of the caller's family.
// @Summary List family members
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		users, err := userSvc.ListUsers(c.UserContext(), actor)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users found", users)
	}
}

// GetUser returns one family member.
// @Summary Get family member
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/users/{id} [get]
// @Security Bearer
func GetUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		u, err := userSvc.GetUser(c.UserContext(), actor, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", u)
	}
}

// CreateUser adds a member to the caller's family.
// @Summary Add family member
// @Description New members are children unless a role is given. Parents only.
// @Tags users
// @Accept json
// @Produce json
// @Param request body NewUser true "Member"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/users [post]
// @Security Bearer
func CreateUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[NewUser](c)
		if input == nil {
			return err
		}
		u, err := userSvc.CreateUser(c.UserContext(), actor, usersvc.Draft{
			Name:     input.Name,
			Role:     user.Role(input.Role),
			Password: input.Password,
			Color:    input.Color,
			Avatar:   input.Avatar,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created user", u)
	}
}

// UpdateUser edits a family member.
// @Summary Update family member
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserInput true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/users/{id} [patch]
// @Security Bearer
func UpdateUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		input, err := common.BindAndValidate[UpdateUserInput](c)
		if input == nil {
			return err
		}
		p := usersvc.Patch{
			Name:     input.Name,
			Color:    input.Color,
			Avatar:   input.Avatar,
			Password: input.Password,
		}
		if input.Role != nil {
			role := user.Role(*input.Role)
			p.Role = &role
		}
		u, err := userSvc.UpdateUser(c.UserContext(), actor, id, p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated successfully", u)
	}
}

// DeleteUser removes a family member who owns no accounts.
// @Summary Delete family member
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/users/{id} [delete]
// @Security Bearer
func DeleteUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		if err := userSvc.DeleteUser(c.UserContext(), actor, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User successfully deleted", fiber.Map{"success": true})
	}
}
