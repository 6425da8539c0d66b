package account

import (
	"github.com/fammee/finance/pkg/domain/account"
	accountsvc "github.com/fammee/finance/pkg/service/account"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers account endpoints.
func Routes(r fiber.Router, accountSvc *accountsvc.Service, protected []fiber.Handler) {
	r.Get("/accounts", common.With(protected, ListAccounts(accountSvc))...)
	r.Post("/accounts", common.With(protected, CreateAccount(accountSvc))...)
	r.Get("/accounts/:id", common.With(protected, GetAccount(accountSvc))...)
	r.Patch("/accounts/:id", common.With(protected, UpdateAccount(accountSvc))...)
	r.Delete("/accounts/:id", common.With(protected, DeleteAccount(accountSvc))...)
}

// ListAccounts returns the accounts visible to the caller.
// @Summary List accounts
// @Description Parents see the whole family and may filter by owner; children see their own.
// @Tags accounts
// @Produce json
// @Param userId query string false "Owner ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /api/accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		ownerID, err := common.ParseOptionalID(c.Query("userId"), "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		accounts, err := accountSvc.ListAccounts(c.UserContext(), actor, ownerID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts found", accounts)
	}
}

// CreateAccount creates an account with a starting balance.
// @Summary Create account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/accounts [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		ownerID, err := common.ParseOptionalID(input.UserID, "userId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		a, err := accountSvc.CreateAccount(c.UserContext(), actor, accountsvc.Draft{
			UserID:    ownerID,
			Name:      input.Name,
			Type:      account.Type(input.Type),
			Balance:   input.Balance,
			Color:     input.Color,
			Icon:      input.Icon,
			AccountNo: input.AccountNo,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// GetAccount returns one account.
// @Summary Get account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/accounts/{id} [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		a, err := accountSvc.GetAccount(c.UserContext(), actor, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Account not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account found", a)
	}
}

// UpdateAccount edits descriptive account fields.
// @Summary Update account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/accounts/{id} [patch]
// @Security Bearer
func UpdateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		input, err := common.BindAndValidate[UpdateAccountRequest](c)
		if input == nil {
			return err
		}
		p := account.Patch{
			Name:      input.Name,
			Color:     input.Color,
			Icon:      input.Icon,
			AccountNo: input.AccountNo,
		}
		if input.Type != nil {
			t := account.Type(*input.Type)
			p.Type = &t
		}
		if input.Status != nil {
			s := account.Status(*input.Status)
			p.Status = &s
		}
		a, err := accountSvc.UpdateAccount(c.UserContext(), actor, id, p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", a)
	}
}

// DeleteAccount removes an account no transaction references.
// @Summary Delete account
// @Tags accounts
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /api/accounts/{id} [delete]
// @Security Bearer
func DeleteAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		if err := accountSvc.DeleteAccount(c.UserContext(), actor, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deleted", fiber.Map{"success": true})
	}
}
