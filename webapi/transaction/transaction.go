package transaction

import (
	"strconv"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/transaction"
	"github.com/fammee/finance/pkg/service/ledger"
	"github.com/fammee/finance/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers transaction endpoints. idempotency guards creation.
func Routes(r fiber.Router, ledgerSvc *ledger.Service, protected []fiber.Handler, idempotency fiber.Handler) {
	r.Get("/transactions", common.With(protected, ListTransactions(ledgerSvc))...)
	r.Post("/transactions", common.With(protected, idempotency, CreateTransaction(ledgerSvc))...)
	r.Get("/transactions/:id", common.With(protected, GetTransaction(ledgerSvc))...)
	r.Patch("/transactions/:id", common.With(protected, UpdateTransaction(ledgerSvc))...)
	r.Delete("/transactions/:id", common.With(protected, DeleteTransaction(ledgerSvc))...)
}

// ListTransactions returns the transactions matching the query, newest first.
// @Summary List transactions
// @Description Filters combine; comma separated lists match any value. With dashboard=true
// @Description the result is restricted to the source accounts of userIds.
// @Tags transactions
// @Produce json
// @Param accountId query string false "Either side of the transaction"
// @Param accountIds query string false "Dashboard account subset"
// @Param userIds query string false "Dashboard users"
// @Param budgetId query string false "Budget ID"
// @Param categoryIds query string false "Category IDs"
// @Param types query string false "income,expense,transfer"
// @Param statuses query string false "planned,completed,void"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param limit query int false "Maximum rows"
// @Param dashboard query bool false "Dashboard mode"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /api/transactions [get]
// @Security Bearer
func ListTransactions(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		q, err := parseQuery(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		txs, err := ledgerSvc.List(c.UserContext(), actor, q)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", txs)
	}
}

func parseQuery(c *fiber.Ctx) (q ledger.Query, err error) {
	q.Dashboard = c.QueryBool("dashboard")
	if q.UserIDs, err = common.ParseIDs(c.Query("userIds"), "userIds"); err != nil {
		return q, err
	}
	if q.AccountIDs, err = common.ParseIDs(c.Query("accountIds"), "accountIds"); err != nil {
		return q, err
	}
	if q.AccountID, err = common.ParseOptionalID(c.Query("accountId"), "accountId"); err != nil {
		return q, err
	}
	if q.BudgetID, err = common.ParseOptionalID(c.Query("budgetId"), "budgetId"); err != nil {
		return q, err
	}
	if q.CategoryIDs, err = common.ParseIDs(c.Query("categoryIds"), "categoryIds"); err != nil {
		return q, err
	}
	for _, t := range common.SplitList(c.Query("types")) {
		typ := transaction.Type(t)
		if !typ.Valid() {
			return q, transaction.ErrInvalidType
		}
		q.Types = append(q.Types, typ)
	}
	for _, s := range common.SplitList(c.Query("statuses")) {
		status := transaction.Status(s)
		if !status.Valid() {
			return q, transaction.ErrInvalidStatus
		}
		q.Statuses = append(q.Statuses, status)
	}
	if q.From, err = common.ParseDate(c.Query("from"), "from"); err != nil {
		return q, err
	}
	if q.To, err = common.ParseDate(c.Query("to"), "to"); err != nil {
		return q, err
	}
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return q, domain.Validationf("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

// CreateTransaction records a transaction and applies its balance movement.
// @Summary Create transaction
// @Description A completed transaction moves balances at once; a planned one waits for completion.
// @Description Send an Idempotency-Key header to make retries safe.
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /api/transactions [post]
// @Security Bearer
func CreateTransaction(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateTransactionRequest](c)
		if input == nil {
			return err
		}
		d, err := input.toDraft()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		t, err := ledgerSvc.Create(c.UserContext(), actor, d)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction created", t)
	}
}

// GetTransaction returns one transaction.
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/transactions/{id} [get]
// @Security Bearer
func GetTransaction(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		t, err := ledgerSvc.Get(c.UserContext(), actor, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transaction not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction found", t)
	}
}

// UpdateTransaction completes a planned transaction or edits its descriptive fields.
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /api/transactions/{id} [patch]
// @Security Bearer
func UpdateTransaction(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		input, err := common.BindAndValidate[UpdateTransactionRequest](c)
		if input == nil {
			return err
		}
		ch, err := input.toChange()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		t, err := ledgerSvc.Patch(c.UserContext(), actor, id, ch)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", t)
	}
}

// DeleteTransaction removes a transaction, reverting its balance movement
// when it was completed.
// @Summary Delete transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /api/transactions/{id} [delete]
// @Security Bearer
func DeleteTransaction(ledgerSvc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := common.MustActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		if err := ledgerSvc.Delete(c.UserContext(), actor, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", fiber.Map{"success": true})
	}
}
