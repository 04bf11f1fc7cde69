package adminapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/gomarket/config"
	"github.com/talkincode/gomarket/internal/adminapi"
	"github.com/talkincode/gomarket/internal/app"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/webserver"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiEnv struct {
	t *testing.T
	e *echo.Echo
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	cfg.Web.Secret = "api-test-secret"
	application := app.NewApplication(&cfg)
	application.OverrideDB(db)

	ws := webserver.NewWebServer(application)
	adminapi.Register(ws, application)
	return &apiEnv{t: t, e: ws.Echo()}
}

func (env *apiEnv) do(method, path string, body interface{}, cookies []*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	env.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

func (env *apiEnv) signup(username, usertype string) []*http.Cookie {
	env.t.Helper()
	rec, _ := env.do(http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret",
		"usertype": usertype,
	}, nil)
	require.Equal(env.t, http.StatusOK, rec.Code)

	rec, _ = env.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username": username,
		"password": "secret",
		"usertype": usertype,
	}, nil)
	require.Equal(env.t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func dataField(payload map[string]interface{}, key string) interface{} {
	data, _ := payload["data"].(map[string]interface{})
	return data[key]
}

func TestMarketplaceFlow(t *testing.T) {
	env := setupAPI(t)

	vendorCk := env.signup("flow-vendor", "vendor")
	rec, payload := env.do(http.MethodPost, "/api/items", map[string]interface{}{
		"title": "flow widget",
		"price": 10.0,
		"stock": 5,
	}, vendorCk)
	require.Equal(t, http.StatusOK, rec.Code)
	itemID, _ := dataField(payload, "id").(string)
	require.NotEmpty(t, itemID)

	customerCk := env.signup("flow-customer", "customer")

	// Two adds merge into one line with quantity 2.
	rec, _ = env.do(http.MethodPost, "/api/cart/items/"+itemID, nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(http.MethodPost, "/api/cart/items/"+itemID, nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = env.do(http.MethodGet, "/api/cart", nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]interface{})
	lines := data["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})["line"].(map[string]interface{})
	assert.EqualValues(t, 2, line["quantity"])
	cart := data["cart"].(map[string]interface{})
	assert.InDelta(t, 20.0, cart["cart_price"].(float64), 0.001)

	rec, payload = env.do(http.MethodPost, "/api/cart/checkout", nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := payload["data"].([]interface{})
	require.Len(t, orders, 1)
	orderID := orders[0].(map[string]interface{})["id"].(string)

	// Cart is empty after checkout.
	rec, payload = env.do(http.MethodGet, "/api/cart", nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	data = payload["data"].(map[string]interface{})
	assert.Empty(t, data["lines"])

	// Both ledgers see the order.
	rec, payload = env.do(http.MethodGet, "/api/orders/customer", nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, payload["total"])

	rec, payload = env.do(http.MethodGet, "/api/orders/vendor", nil, vendorCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, payload["total"])

	// Vendor marks the order complete.
	rec, _ = env.do(http.MethodDelete, "/api/orders/"+orderID, nil, vendorCk)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = env.do(http.MethodGet, "/api/orders/vendor", nil, vendorCk)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, payload["total"])
}

func TestCheckoutInsufficientStockHTTP(t *testing.T) {
	env := setupAPI(t)

	vendorCk := env.signup("stock-vendor", "vendor")
	rec, payload := env.do(http.MethodPost, "/api/items", map[string]interface{}{
		"title": "scarce widget",
		"price": 3.0,
		"stock": 2,
	}, vendorCk)
	require.Equal(t, http.StatusOK, rec.Code)
	itemID := dataField(payload, "id").(string)

	customerCk := env.signup("stock-customer", "customer")
	rec, _ = env.do(http.MethodPost, "/api/cart/items/"+itemID, nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(http.MethodPut, fmt.Sprintf("/api/cart/items/%s?quantity=2", itemID), nil, customerCk)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = env.do(http.MethodPost, "/api/cart/checkout", nil, customerCk)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", payload["code"])
}

func TestCartRequiresLogin(t *testing.T) {
	env := setupAPI(t)
	rec, _ := env.do(http.MethodGet, "/api/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVendorCannotUseForeignItem(t *testing.T) {
	env := setupAPI(t)

	ownerCk := env.signup("owner-vendor", "vendor")
	rec, payload := env.do(http.MethodPost, "/api/items", map[string]interface{}{
		"title": "owned widget",
		"price": 5.0,
		"stock": 5,
	}, ownerCk)
	require.Equal(t, http.StatusOK, rec.Code)
	itemID := dataField(payload, "id").(string)

	rivalCk := env.signup("rival-vendor", "vendor")
	rec, _ = env.do(http.MethodDelete, "/api/items/"+itemID, nil, rivalCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.do(http.MethodPut, "/api/items/"+itemID, map[string]interface{}{
		"title": "hijacked",
	}, rivalCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerCannotListItems(t *testing.T) {
	env := setupAPI(t)
	customerCk := env.signup("plain-customer", "customer")

	rec, _ := env.do(http.MethodPost, "/api/items", map[string]interface{}{
		"title": "contraband",
		"price": 1.0,
		"stock": 1,
	}, customerCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDuplicateRegistration(t *testing.T) {
	env := setupAPI(t)
	env.signup("dup-user", "customer")

	rec, payload := env.do(http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username": "dup-user",
		"email":    "dup-user@example.com",
		"password": "secret",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_EXISTS", payload["code"])
}
