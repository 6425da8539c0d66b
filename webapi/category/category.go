package category

import (
	"github.com/fammee/finance/pkg/domain/transaction"
	categorysvc "github.com/fammee/finance/pkg/service/category"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateCategoryRequest adds a category to a group.
type CreateCategoryRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	GroupID string `json:"groupId" validate:"required,uuid"`
	Private bool   `json:"private"`
}

// UpdateCategoryRequest renames a category or moves it.
type UpdateCategoryRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	GroupID *string `json:"groupId" validate:"omitempty,uuid"`
}

// GroupRequest creates or renames a category group.
type GroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"omitempty,oneof=income expense transfer"`
}

// Routes registers the category catalog endpoints.
func Routes(r fiber.Router, categorySvc *categorysvc.Service, protected []fiber.Handler) {
	r.Get("/categories", common.With(protected, ListCategories(categorySvc))...)
	r.Post("/categories", common.With(protected, CreateCategory(categorySvc))...)
	r.Patch("/categories/:id", common.With(protected, UpdateCategory(categorySvc))...)
	r.Delete("/categories/:id", common.With(protected, DeleteCategory(categorySvc))...)

	r.Post("/groups", common.With(protected, CreateGroup(categorySvc))...)
	r.Patch("/groups/:id", common.With(protected, RenameGroup(categorySvc))...)
	r.Delete("/groups/:id", common.With(protected, DeleteGroup(categorySvc))...)
}

// ListCategories returns every group and category.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} common.Response
// @Router /api/categories [get]
// @Security Bearer
func ListCategories(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		catalog, err := categorySvc.List(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch categories", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Categories found", catalog)
	}
}

// CreateCategory adds a category.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/categories [post]
// @Security Bearer
func CreateCategory(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateCategoryRequest](c)
		if input == nil {
			return err
		}
		groupID, err := common.ParseOptionalID(input.GroupID, "groupId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		cat, err := categorySvc.CreateCategory(c.UserContext(), actor, input.Name, *groupID, input.Private)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Category created", cat)
	}
}

// UpdateCategory renames or moves a category.
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/categories/{id} [patch]
// @Security Bearer
func UpdateCategory(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid category ID", err)
		}
		input, err := common.BindAndValidate[UpdateCategoryRequest](c)
		if input == nil {
			return err
		}
		var raw string
		if input.GroupID != nil {
			raw = *input.GroupID
		}
		groupID, err := common.ParseOptionalID(raw, "groupId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		cat, err := categorySvc.UpdateCategory(c.UserContext(), id, input.Name, groupID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Category updated", cat)
	}
}

// DeleteCategory removes a category no transaction uses.
// @Summary Delete category
// @Tags categories
// @Param id path string true "Category ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/categories/{id} [delete]
// @Security Bearer
func DeleteCategory(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid category ID", err)
		}
		if err := categorySvc.DeleteCategory(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Category deleted", fiber.Map{"success": true})
	}
}

// CreateGroup adds a category group.
// @Summary Create category group
// @Tags categories
// @Accept json
// @Produce json
// @Param request body GroupRequest true "Group"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/groups [post]
// @Security Bearer
func CreateGroup(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[GroupRequest](c)
		if input == nil {
			return err
		}
		typ := transaction.Type(input.Type)
		if typ == "" {
			typ = transaction.TypeExpense
		}
		g, err := categorySvc.CreateGroup(c.UserContext(), input.Name, typ)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Group created", g)
	}
}

// RenameGroup renames a category group.
// @Summary Rename category group
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body GroupRequest true "Group"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/groups/{id} [patch]
// @Security Bearer
func RenameGroup(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid group ID", err)
		}
		input, err := common.BindAndValidate[GroupRequest](c)
		if input == nil {
			return err
		}
		g, err := categorySvc.RenameGroup(c.UserContext(), id, input.Name)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to rename group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Group renamed", g)
	}
}

// DeleteGroup removes a group with all of its categories.
// @Summary Delete category group
// @Tags categories
// @Param id path string true "Group ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/groups/{id} [delete]
// @Security Bearer
func DeleteGroup(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid group ID", err)
		}
		if err := categorySvc.DeleteGroup(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete group", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Group deleted", fiber.Map{"success": true})
	}
}
