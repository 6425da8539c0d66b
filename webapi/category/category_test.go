package category_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fammee/finance/pkg/domain/category"
	categorysvc "github.com/fammee/finance/pkg/service/category"
	"github.com/fammee/finance/webapi/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCatalog(t *testing.T) {
	a := testutils.NewTestApp(t, nil)

	resp := a.Do(http.MethodPost, "/api/groups", `{"name":"Home","type":"expense"}`, a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	group := testutils.Decode[testutils.Envelope[category.Group]](t, resp).Data
	assert.True(t, group.IsCustom)

	resp = a.Do(http.MethodPost, "/api/categories", fmt.Sprintf(`{"name":"Rent","groupId":"%s"}`, group.ID), a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rent := testutils.Decode[testutils.Envelope[category.Category]](t, resp).Data
	assert.Nil(t, rent.UserID)

	resp = a.Do(http.MethodPost, "/api/categories", fmt.Sprintf(`{"name":"Comics","groupId":"%s","private":true}`, group.ID), a.ChildToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comics := testutils.Decode[testutils.Envelope[category.Category]](t, resp).Data
	require.NotNil(t, comics.UserID)
	assert.Equal(t, a.Child.ID, *comics.UserID)

	resp = a.Do(http.MethodPatch, "/api/categories/"+comics.ID.String(), `{"name":"Books"}`, a.ChildToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Books", testutils.Decode[testutils.Envelope[category.Category]](t, resp).Data.Name)

	resp = a.Do(http.MethodPatch, "/api/groups/"+group.ID.String(), `{"name":"Household"}`, a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodGet, "/api/categories", "", a.ChildToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	catalog := testutils.Decode[testutils.Envelope[categorysvc.Catalog]](t, resp).Data
	assert.Len(t, catalog.Categories, 2)
	require.Len(t, catalog.Groups, 1)
	assert.Equal(t, "Household", catalog.Groups[0].Name)

	bank := a.Account(t, a.Parent, "Bank", "100")
	resp = a.Do(http.MethodPost, "/api/transactions",
		fmt.Sprintf(`{"type":"expense","amount":"10","accountId":"%s","categoryId":"%s"}`, bank.ID, rent.ID), a.ParentToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodDelete, "/api/categories/"+rent.ID.String(), "", a.ParentToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
	resp = a.Do(http.MethodDelete, "/api/groups/"+group.ID.String(), "", a.ParentToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodDelete, "/api/categories/"+comics.ID.String(), "", a.ParentToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = a.Do(http.MethodPost, "/api/categories", `{"name":"Orphan","groupId":"6f1c1b1e-0000-4000-8000-000000000000"}`, a.ParentToken)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
