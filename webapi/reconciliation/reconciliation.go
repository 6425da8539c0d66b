package reconciliation

import (
	"github.com/fammee/finance/pkg/domain/reconciliation"
	reconsvc "github.com/fammee/finance/pkg/service/reconciliation"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ReconcileRequest represents the request body for a balance correction.
// PerformedByID defaults to the caller.
type ReconcileRequest struct {
	AccountID     string           `json:"accountId" validate:"required,uuid"`
	NewBalance    *decimal.Decimal `json:"newBalance" validate:"required"`
	PerformedByID string           `json:"performedById" validate:"omitempty,uuid"`
	Note          string           `json:"note" validate:"max=1000"`
}

// Routes registers reconciliation endpoints. idempotency guards corrections.
func Routes(r fiber.Router, reconSvc *reconsvc.Service, protected []fiber.Handler, idempotency fiber.Handler) {
	r.Get("/reconciliations", common.With(protected, ListReconciliations(reconSvc))...)
	r.Post("/reconciliations", common.With(protected, idempotency, Reconcile(reconSvc))...)
}

// ListReconciliations returns an account's correction history, newest first.
// @Summary List reconciliations
// @Tags reconciliations
// @Produce json
// @Param accountId query string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/reconciliations [get]
// @Security Bearer
func ListReconciliations(reconSvc *reconsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		accountID, err := common.ParseOptionalID(c.Query("accountId"), "accountId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		if accountID == nil {
			return common.ProblemDetailsJSON(c, "Invalid query", reconciliation.ErrAccountRequired)
		}
		recs, err := reconSvc.ListByAccount(c.UserContext(), actor, *accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch reconciliations", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Reconciliations found", recs)
	}
}

// Reconcile sets an account balance to a counted value and records the difference.
// @Summary Reconcile account balance
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body ReconcileRequest true "Correction"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/reconciliations [post]
// @Security Bearer
func Reconcile(reconSvc *reconsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ReconcileRequest](c)
		if input == nil {
			return err
		}
		accountID, err := common.ParseOptionalID(input.AccountID, "accountId")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		performer, err := common.ParseOptionalID(input.PerformedByID, "performedById")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		req := reconciliation.Request{
			AccountID:     *accountID,
			NewBalance:    input.NewBalance,
			PerformedByID: actor.UserID,
			Note:          input.Note,
		}
		if performer != nil {
			req.PerformedByID = *performer
		}
		rec, err := reconSvc.Reconcile(c.UserContext(), actor, req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reconcile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Balance reconciled", rec)
	}
}
