package shipping

import (
	"net/url"
	"testing"

	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/testutil"
	"erp-backend/internal/testutil/sessiontest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	testutil.NewDB(t)
	m := sessiontest.NewManager()
	app, api := sessiontest.NewApp(m)
	api.Get("/shipping-plans", ListHandler(testutil.Config()))
	api.Post("/shipping-plans", CreateHandler())
	api.Put("/shipping-plans/:id", UpdateHandler())
	api.Post("/shipping-plans/:id/items", AddItemHandler())

	u := sessiontest.SeedUser(t, "shipper", models.RoleStaff)
	return app, sessiontest.Token(t, m, &u)
}

func TestCreateShippingPlanRequiresDestination(t *testing.T) {
	app, token := newApp(t)

	status, body := testutil.Do(t, app, "POST", "/api/shipping-plans", map[string]any{"title": "부산 출고"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "배송지는 필수 입력 사항입니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/shipping-plans", map[string]any{
		"title": "부산 출고", "destination": "부산 물류센터", "shipping_date": "2024-06-01", "status": "in_transit",
	}, token)
	require.Equal(t, fiber.StatusCreated, status, body)
	badge := body["status_badge"].(map[string]any)
	assert.Equal(t, "배송중", badge["label"])
	assert.Equal(t, "bg-purple-100 text-purple-800", badge["class"])
	assert.Equal(t, "2024-06-01", body["shipping_date"])
}

func TestItemsCountAndFilter(t *testing.T) {
	app, token := newApp(t)
	it := models.InventoryItem{Name: "Bolt", Quantity: 10}
	require.NoError(t, database.DB.Create(&it).Error)

	testutil.Do(t, app, "POST", "/api/shipping-plans", map[string]any{"title": "A", "destination": "서울"}, token)
	testutil.Do(t, app, "POST", "/api/shipping-plans", map[string]any{"title": "B", "destination": "부산", "status": "delivered"}, token)

	status, body := testutil.Do(t, app, "POST", "/api/shipping-plans/2/items", map[string]any{"inventory_id": it.ID, "quantity": 3}, token)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "Bolt", body["inventory_name"])

	status, list := testutil.DoList(t, app, "GET", "/api/shipping-plans?search="+url.QueryEscape("부산"), token)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0]["items_count"])
	assert.Equal(t, "배송완료", list[0]["status_badge"].(map[string]any)["label"])

	status, list = testutil.DoList(t, app, "GET", "/api/shipping-plans?status=planned", token)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0]["title"])
}

func TestUpdateShippingPlan(t *testing.T) {
	app, token := newApp(t)
	testutil.Do(t, app, "POST", "/api/shipping-plans", map[string]any{"title": "A", "destination": "서울"}, token)

	status, body := testutil.Do(t, app, "PUT", "/api/shipping-plans/1", map[string]any{"title": "A", "destination": "인천", "status": "delayed"}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "인천", body["destination"])
	assert.Equal(t, "지연", body["status_badge"].(map[string]any)["label"])
}
