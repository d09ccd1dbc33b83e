package server

import (
	"io"
	"net/http/httptest"
	"testing"

	"erp-backend/internal/auth"
	"erp-backend/internal/models"
	"erp-backend/internal/notification"
	"erp-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newServer(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	m := auth.NewManager(cfg, auth.NewMemoryStore())
	return New(cfg, m, notification.Noop{}), db
}

func TestProtectedRouteWithoutSessionFetchesNothing(t *testing.T) {
	app, db := newServer(t)

	var queries int
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		queries++
	}))

	for _, path := range []string{"/api/inventory", "/api/purchase-requests", "/api/dashboard/stats", "/api/audit-logs"} {
		status, body := testutil.Do(t, app, "GET", path, nil, "")
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "/login", body["redirect"], path)
	}
	assert.Zero(t, queries)
}

func TestInventoryAddScenario(t *testing.T) {
	app, db := newServer(t)

	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{
		"method": "username", "username": "admin", "password": "admin123",
	}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	token := body["token"].(string)

	status, body = testutil.Do(t, app, "POST", "/api/inventory", map[string]any{
		"name": "Bolt", "quantity": "100", "unit_price": "500",
	}, token)
	require.Equal(t, fiber.StatusCreated, status, body)

	var items []models.InventoryItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 100, items[0].Quantity)
	assert.Equal(t, 500.0, items[0].UnitPrice)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Equal(t, "관리자", logs[0].UserName)

	status, list := testutil.DoList(t, app, "GET", "/api/audit-logs?entity_type=inventory", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list, 1)
}

func TestRegisterThenLoginFlow(t *testing.T) {
	app, _ := newServer(t)

	status, body := testutil.Do(t, app, "POST", "/api/auth/register", map[string]any{
		"username": "leeyh", "first_name": "영희", "last_name": "이", "email": "lee@example.com",
		"password": "secret12", "confirm_password": "secret12", "terms_agreed": true,
	}, "")
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"email": "lee@example.com", "password": "secret12"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	token := body["token"].(string)

	status, body = testutil.Do(t, app, "GET", "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "영희 이", body["full_name"])

	// user rolü admin değil
	status, _ = testutil.Do(t, app, "POST", "/api/users", map[string]any{"email": "x@example.com", "username": "xxxx", "password": "secret12"}, token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newServer(t)

	status, body := testutil.Do(t, app, "GET", "/healthz", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	testutil.Do(t, app, "GET", "/api/check", nil, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "erp_http_requests_total")
	assert.Contains(t, string(raw), "erp_queries_total")
}

func TestNoDeleteRoutes(t *testing.T) {
	app, _ := newServer(t)
	for _, r := range app.GetRoutes() {
		assert.NotEqual(t, fiber.MethodDelete, r.Method, r.Path)
	}
}
