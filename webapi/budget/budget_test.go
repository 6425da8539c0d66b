package budget_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/transaction"
	budgetsvc "github.com/fammee/finance/pkg/service/budget"
	"github.com/fammee/finance/webapi/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemEnvelope = testutils.Envelope[budget.ItemView]

func TestBudgetPlanning(t *testing.T) {
	a := testutils.NewTestApp(t, nil)
	bank := a.Account(t, a.Parent, "Bank", "1000")

	resp := a.Do(http.MethodPost, "/api/budgets", `{"title":"March","limit":"500","period":"monthly"}`, a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := testutils.Decode[testutils.Envelope[budget.Budget]](t, resp).Data
	assert.Equal(t, a.Parent.ID, b.CreatedByID)
	base := "/api/budgets/" + b.ID.String()

	addItem := func(name, amount string) budget.ItemView {
		resp := a.Do(http.MethodPost, base+"/items",
			fmt.Sprintf(`{"name":%q,"amount":%q,"accountId":"%s","date":"2025-03-05"}`, name, amount, bank.ID), a.ParentToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return testutils.Decode[itemEnvelope](t, resp).Data
	}
	rent := addItem("Rent", "300")
	food := addItem("Food", "150")
	gift := addItem("Gift", "50")
	assert.Equal(t, transaction.ItemPending, rent.Status)
	assert.Equal(t, transaction.TypeExpense, rent.Type)
	assert.Equal(t, "1000.00", a.Balance(t, bank.ID).StringFixed(2))

	resp = a.Do(http.MethodPost, base+"/items/"+rent.ID.String()+"/complete", `{"actualAmount":"320"}`, a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := testutils.Decode[itemEnvelope](t, resp).Data
	assert.Equal(t, transaction.ItemDone, done.Status)
	assert.Equal(t, "320.00", done.ActualAmount.StringFixed(2))
	assert.Equal(t, "300.00", done.PlannedAmount.StringFixed(2))
	assert.Equal(t, "680.00", a.Balance(t, bank.ID).StringFixed(2))

	resp = a.Do(http.MethodPatch, base+"/items/"+gift.ID.String(), `{"status":"cancelled"}`, a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, transaction.ItemCancelled, testutils.Decode[itemEnvelope](t, resp).Data.Status)

	resp = a.Do(http.MethodPatch, base+"/items/"+gift.ID.String(), `{"status":"pending"}`, a.ParentToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodGet, base, "", a.ChildToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overview := testutils.Decode[testutils.Envelope[budgetsvc.Overview]](t, resp).Data
	assert.Len(t, overview.Items, 3)
	assert.Equal(t, "450.00", overview.Summary.Planned.StringFixed(2))
	assert.Equal(t, "320.00", overview.Summary.Spent.StringFixed(2))
	assert.Equal(t, "180.00", overview.Summary.Remaining.StringFixed(2))
	assert.Equal(t, 1, overview.Summary.Pending)
	assert.Equal(t, 1, overview.Summary.Done)
	assert.Equal(t, 1, overview.Summary.Cancelled)

	resp = a.Do(http.MethodPatch, base, `{"title":"Hijacked"}`, a.ChildToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodPatch, base, `{"title":"March plan","limit":"600"}`, a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "March plan", testutils.Decode[testutils.Envelope[budget.Budget]](t, resp).Data.Title)

	resp = a.Do(http.MethodDelete, base, "", a.ChildToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	archived := testutils.Decode[testutils.Envelope[struct {
		Voided int64 `json:"voided"`
	}]](t, resp).Data
	assert.EqualValues(t, 1, archived.Voided)
	assert.Equal(t, "680.00", a.Balance(t, bank.ID).StringFixed(2))

	resp = a.Do(http.MethodGet, base, "", a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overview = testutils.Decode[testutils.Envelope[budgetsvc.Overview]](t, resp).Data
	assert.Equal(t, budget.StatusArchived, overview.Status)
	for _, it := range overview.Items {
		if it.ID == food.ID {
			assert.Equal(t, transaction.ItemCancelled, it.Status)
		}
	}

	resp = a.Do(http.MethodPost, base+"/items", `{"name":"Late","amount":"1"}`, a.ParentToken)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBudgetItems_DeleteRevertsDoneItem(t *testing.T) {
	a := testutils.NewTestApp(t, nil)
	bank := a.Account(t, a.Parent, "Bank", "100")

	resp := a.Do(http.MethodPost, "/api/budgets", `{"title":"Trip","limit":"50","period":"one_time"}`, a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := testutils.Decode[testutils.Envelope[budget.Budget]](t, resp).Data
	base := "/api/budgets/" + b.ID.String()

	resp = a.Do(http.MethodPost, base+"/items", fmt.Sprintf(`{"name":"Tickets","amount":"40","accountId":"%s"}`, bank.ID), a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := testutils.Decode[itemEnvelope](t, resp).Data

	resp = a.Do(http.MethodPost, base+"/items/"+item.ID.String()+"/complete", `{"fee":"1.5"}`, a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	assert.Equal(t, "58.50", a.Balance(t, bank.ID).StringFixed(2))

	resp = a.Do(http.MethodDelete, base+"/items/"+item.ID.String(), "", a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	assert.Equal(t, "100.00", a.Balance(t, bank.ID).StringFixed(2))

	resp = a.Do(http.MethodDelete, base+"/items/"+item.ID.String(), "", a.ParentToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodPost, "/api/budgets", `{"title":"Bad","period":"weekly"}`, a.ParentToken)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
