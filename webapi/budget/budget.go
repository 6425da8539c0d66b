package budget

import (
	budgetsvc "github.com/fammee/finance/pkg/service/budget"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers budget and budget item endpoints.
func Routes(r fiber.Router, budgetSvc *budgetsvc.Service, protected []fiber.Handler) {
	r.Get("/budgets", common.With(protected, ListBudgets(budgetSvc))...)
	r.Post("/budgets", common.With(protected, CreateBudget(budgetSvc))...)
	r.Get("/budgets/:id", common.With(protected, GetBudget(budgetSvc))...)
	r.Patch("/budgets/:id", common.With(protected, UpdateBudget(budgetSvc))...)
	r.Delete("/budgets/:id", common.With(protected, ArchiveBudget(budgetSvc))...)

	r.Post("/budgets/:id/items", common.With(protected, AddItem(budgetSvc))...)
	r.Patch("/budgets/:id/items/:itemId", common.With(protected, UpdateItem(budgetSvc))...)
	r.Post("/budgets/:id/items/:itemId/complete", common.With(protected, CompleteItem(budgetSvc))...)
	r.Delete("/budgets/:id/items/:itemId", common.With(protected, DeleteItem(budgetSvc))...)
}

func itemIDs(c *fiber.Ctx) (budgetID, itemID uuid.UUID, err error) {
	if budgetID, err = common.ParseID(c, "id"); err != nil {
		return
	}
	itemID, err = common.ParseID(c, "itemId")
	return
}

// ListBudgets returns the family's active budgets with their items.
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /api/budgets [get]
// @Security Bearer
func ListBudgets(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		budgets, err := budgetSvc.List(c.UserContext(), actor)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch budgets", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budgets found", budgets)
	}
}

// CreateBudget creates a budget.
// @Summary Create budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body CreateBudgetRequest true "Budget"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/budgets [post]
// @Security Bearer
func CreateBudget(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateBudgetRequest](c)
		if input == nil {
			return err
		}
		d, err := input.toDraft()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		b, err := budgetSvc.Create(c.UserContext(), actor, d)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Budget created", b)
	}
}

// GetBudget returns a budget with its items and summary.
// @Summary Get budget
// @Tags budgets
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id} [get]
// @Security Bearer
func GetBudget(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid budget ID", err)
		}
		o, err := budgetSvc.Get(c.UserContext(), actor, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Budget not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget found", o)
	}
}

// UpdateBudget edits a budget. Only its creator may.
// @Summary Update budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body UpdateBudgetRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id} [patch]
// @Security Bearer
func UpdateBudget(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid budget ID", err)
		}
		input, err := common.BindAndValidate[UpdateBudgetRequest](c)
		if input == nil {
			return err
		}
		p, err := input.toPatch()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		b, err := budgetSvc.Update(c.UserContext(), actor, id, p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget updated", b)
	}
}

// ArchiveBudget archives a budget and voids its pending items.
// @Summary Archive budget
// @Tags budgets
// @Param id path string true "Budget ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id} [delete]
// @Security Bearer
func ArchiveBudget(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid budget ID", err)
		}
		voided, err := budgetSvc.Archive(c.UserContext(), actor, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to archive budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget archived", fiber.Map{"success": true, "voided": voided})
	}
}

// AddItem plans a new item in a budget.
// @Summary Add budget item
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body AddItemRequest true "Item"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id}/items [post]
// @Security Bearer
func AddItem(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid budget ID", err)
		}
		input, err := common.BindAndValidate[AddItemRequest](c)
		if input == nil {
			return err
		}
		d, err := input.toDraft()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		item, err := budgetSvc.AddItem(c.UserContext(), actor, id, d)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to add item", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Item added", item)
	}
}

// UpdateItem edits or changes the state of a budget item.
// @Summary Update budget item
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param itemId path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id}/items/{itemId} [patch]
// @Security Bearer
func UpdateItem(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		budgetID, itemID, err := itemIDs(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid ID", err)
		}
		input, err := common.BindAndValidate[UpdateItemRequest](c)
		if input == nil {
			return err
		}
		p, err := input.toPatch()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		item, err := budgetSvc.UpdateItem(c.UserContext(), actor, budgetID, itemID, p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update item", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Item updated", item)
	}
}

// CompleteItem books a pending budget item.
// @Summary Complete budget item
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param itemId path string true "Item ID"
// @Param request body CompleteItemRequest true "Actual values"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /api/budgets/{id}/items/{itemId}/complete [post]
// @Security Bearer
func CompleteItem(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		budgetID, itemID, err := itemIDs(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid ID", err)
		}
		input, err := common.BindAndValidate[CompleteItemRequest](c)
		if input == nil {
			return err
		}
		completion, err := input.toCompletion()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		item, err := budgetSvc.CompleteItem(c.UserContext(), actor, budgetID, itemID, completion)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to complete item", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Item completed", item)
	}
}

// DeleteItem removes a budget item, reverting it if it was done.
// @Summary Delete budget item
// @Tags budgets
// @Param id path string true "Budget ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/budgets/{id}/items/{itemId} [delete]
// @Security Bearer
func DeleteItem(budgetSvc *budgetsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		budgetID, itemID, err := itemIDs(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid ID", err)
		}
		if err := budgetSvc.DeleteItem(c.UserContext(), actor, budgetID, itemID); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete item", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Item deleted", fiber.Map{"success": true})
	}
}
