// Package admin exposes maintenance operations to parents.
package admin

import (
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers admin endpoints.
func Routes(r fiber.Router, ledgerSvc *ledger.Service, protected []fiber.Handler) {
	r.Post("/admin/recalculate", common.With(protected, Recalculate(ledgerSvc))...)
}

// Recalculate rebuilds every account balance from its completed transactions.
// @Summary Recalculate balances
// @Description Returns the stored and rebuilt balance of every account and how many drifted.
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /api/admin/recalculate [post]
// @Security Bearer
func Recalculate(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		if !actor.IsParent() {
			return common.ProblemDetailsJSON(c, "Forbidden", user.ErrParentOnly)
		}
		report, err := ledgerSvc.Recalculate(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Recalculation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balances recalculated", report)
	}
}
