package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/routes"
	"github.com/shashiranjanraj/mandi/pkg/auth"
	"github.com/shashiranjanraj/mandi/pkg/router"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	r := router.New()
	routes.RegisterAPI(r, store.NewMemory())
	return &apiClient{t: t, handler: r.Handler()}
}

func (c *apiClient) as(u *models.User) *apiClient {
	c.t.Helper()
	token, err := auth.GenerateToken(u)
	require.NoError(c.t, err)
	return &apiClient{t: c.t, handler: c.handler, token: token}
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *apiClient) data(rec *httptest.ResponseRecorder) map[string]interface{} {
	c.t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func (c *apiClient) list(rec *httptest.ResponseRecorder) []interface{} {
	c.t.Helper()
	var envelope struct {
		Data []interface{} `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func buyer() *models.User {
	return &models.User{ID: "u-ravi", Name: "Ravi", Email: "ravi@mandi.test", Role: models.RoleUser}
}

func manager() *models.User {
	return &models.User{ID: "u-asha", Name: "Asha", Email: "asha@mandi.test", Role: models.RoleAdmin}
}

func validCheckout() map[string]string {
	return map[string]string{
		"customerName":    "Ravi Traders",
		"customerPhone":   "9876543210",
		"deliveryAddress": "Shop 14, Azadpur Mandi",
		"deliveryDate":    "2026-09-05",
		"deliveryTime":    "06:00",
	}
}

func addRice(t *testing.T, c *apiClient) {
	t.Helper()
	rec := c.do(http.MethodPost, "/api/cart/items", map[string]interface{}{
		"_id": "64a1", "name": "Basmati Rice 25kg", "price": 120,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoginIssuesTokenPair(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/login", map[string]string{
		"name": "Ravi", "email": "ravi@mandi.test",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := api.data(rec)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, data["refresh"])

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ravi@mandi.test", claims.Email)
	assert.Equal(t, string(models.RoleUser), claims.Role)
}

func TestLoginAdminRoleIsGated(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "asha@mandi.test")
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/login", map[string]string{"email": "Asha@Mandi.Test"})
	require.Equal(t, http.StatusOK, rec.Code)
	claims, err := auth.ValidateToken(api.data(rec)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)

	rec = api.do(http.MethodPost, "/api/login", map[string]string{"email": "ravi@mandi.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	claims, err = auth.ValidateToken(api.data(rec)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleUser), claims.Role, "unlisted emails never get admin")
}

func TestLoginRequiresEmail(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/login", map[string]string{"name": "nobody"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/cart", "/api/orders"} {
		rec := api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAdminRoutesRejectPlainUsers(t *testing.T) {
	api := newAPI(t).as(buyer())

	rec := api.do(http.MethodGet, "/api/admin/notifications", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCartFlow(t *testing.T) {
	api := newAPI(t).as(buyer())

	addRice(t, api)

	rec := api.do(http.MethodPut, "/api/cart/items/64a1", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, api.data(rec)["count"])

	rec = api.do(http.MethodPut, "/api/cart/items/64a1", map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodDelete, "/api/cart/items/64a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, api.data(rec)["count"])
}

func TestCartRejectsUnidentifiedProduct(t *testing.T) {
	api := newAPI(t).as(buyer())

	rec := api.do(http.MethodPost, "/api/cart/items", map[string]string{"name": "mystery item"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	api := newAPI(t).as(buyer())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(`{"broken`))
	req.Header.Set("Authorization", "Bearer "+api.token)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t)
	asBuyer := api.as(buyer())
	asAdmin := api.as(manager())

	// Empty cart cannot check out.
	rec := asBuyer.do(http.MethodPost, "/api/orders", validCheckout())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	addRice(t, asBuyer)

	rec = asBuyer.do(http.MethodPost, "/api/orders", validCheckout())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID, _ := api.data(rec)["id"].(string)
	require.NotEmpty(t, orderID)

	// Buyer sees the order, a stranger does not.
	rec = asBuyer.do(http.MethodGet, "/api/orders/"+orderID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	stranger := api.as(&models.User{ID: "u-x", Email: "x@mandi.test", Role: models.RoleUser})
	rec = stranger.do(http.MethodGet, "/api/orders/"+orderID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Status changes are admin territory.
	rec = asBuyer.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = asAdmin.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = asAdmin.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", map[string]string{"status": "weird"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Shipped orders are locked.
	rec = asBuyer.do(http.MethodPost, "/api/orders/"+orderID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = asBuyer.do(http.MethodPost, "/api/orders/ORD-nope/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderListScopedToActor(t *testing.T) {
	api := newAPI(t)
	asBuyer := api.as(buyer())

	addRice(t, asBuyer)
	rec := asBuyer.do(http.MethodPost, "/api/orders", validCheckout())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = asBuyer.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, api.list(rec), 1)

	stranger := api.as(&models.User{ID: "u-x", Email: "x@mandi.test", Role: models.RoleUser})
	rec = stranger.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, api.list(rec))
}

func TestAdminNotificationsFlow(t *testing.T) {
	api := newAPI(t)
	asBuyer := api.as(buyer())
	asAdmin := api.as(manager())

	addRice(t, asBuyer)
	rec := asBuyer.do(http.MethodPost, "/api/orders", validCheckout())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = asAdmin.do(http.MethodGet, "/api/admin/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := api.data(rec)
	list, _ := data["notifications"].([]interface{})
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, data["unreadCount"])

	first, _ := list[0].(map[string]interface{})
	id, _ := first["id"].(string)
	require.NotEmpty(t, id)

	rec = asAdmin.do(http.MethodPut, "/api/admin/notifications/"+id+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, api.data(rec)["unreadCount"])

	rec = asAdmin.do(http.MethodGet, "/api/admin/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, _ = api.data(rec)["notifications"].([]interface{})
	assert.Empty(t, list)
}

func TestExportCSVOverHTTP(t *testing.T) {
	api := newAPI(t)
	asBuyer := api.as(buyer())
	asAdmin := api.as(manager())

	addRice(t, asBuyer)
	rec := asBuyer.do(http.MethodPost, "/api/orders", validCheckout())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = asAdmin.do(http.MethodGet, "/api/admin/orders/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "order_id,")
	assert.Contains(t, rec.Body.String(), "Ravi Traders")
}

func TestExportArchiveValidatesDiskName(t *testing.T) {
	storage.Connect()
	api := newAPI(t)
	asAdmin := api.as(manager())

	// A typo or an unconfigured disk must be rejected up front, not queued
	// for a worker to crash on.
	rec := asAdmin.do(http.MethodPost, "/api/admin/orders/export", map[string]string{"disk": "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = asAdmin.do(http.MethodPost, "/api/admin/orders/export", map[string]string{"disk": "local"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLogoutWipesSessionData(t *testing.T) {
	api := newAPI(t)
	asBuyer := api.as(buyer())

	addRice(t, asBuyer)
	rec := asBuyer.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = asBuyer.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, api.data(rec)["count"])
}
