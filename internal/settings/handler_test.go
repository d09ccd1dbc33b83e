package settings

import (
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
	s := api.Group("/settings")
	s.Get("/company", GetCompanyHandler())
	s.Put("/company", UpdateCompanyHandler())
	s.Get("/categories", ListCategoriesHandler())
	s.Post("/categories", CreateCategoryHandler())
	s.Get("/employees", ListEmployeesHandler())
	s.Post("/employees", CreateEmployeeHandler())
	s.Get("/priorities", ListPrioritiesHandler())
	s.Post("/priorities", CreatePriorityHandler())
	s.Get("/statuses", ListStatusesHandler())
	s.Post("/statuses", CreateStatusHandler())

	u := sessiontest.SeedUser(t, "admin01", models.RoleAdmin)
	return app, sessiontest.Token(t, m, &u)
}

func TestCompanySettings(t *testing.T) {
	app, token := newApp(t)

	status, body := testutil.Do(t, app, "GET", "/api/settings/company", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "KRW", body["currency"])
	assert.Equal(t, "Asia/Seoul", body["timezone"])

	status, body = testutil.Do(t, app, "PUT", "/api/settings/company", map[string]any{"company_name": "한빛산업"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "주소는 필수 입력 사항입니다.", body["error"])

	status, body = testutil.Do(t, app, "PUT", "/api/settings/company", map[string]any{
		"company_name": "한빛산업", "address": "서울시 중구", "phone": "02-123-4567",
		"email": "info@hanbit.kr", "tax_id": "123-45-67890", "currency": "USD",
	}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "한빛산업", body["company_name"])
	assert.Equal(t, "USD", body["currency"])
	assert.NotNil(t, body["updated_by"])

	var n int64
	database.DB.Model(&models.CompanySettings{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestCatalogLists(t *testing.T) {
	app, token := newApp(t)

	status, body := testutil.Do(t, app, "POST", "/api/settings/categories", map[string]any{"name": "원자재"}, token)
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = testutil.Do(t, app, "POST", "/api/settings/employees", map[string]any{"name": "박지훈", "position": "대리"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "부서는 필수 입력 사항입니다.", body["error"])

	status, _ = testutil.Do(t, app, "POST", "/api/settings/employees", map[string]any{
		"name": "박지훈", "position": "대리", "department": "구매팀", "phone": "010-0000-0000", "email": "park@example.com",
	}, token)
	require.Equal(t, fiber.StatusCreated, status)

	for _, p := range []map[string]any{{"name": "낮음", "priority_value": "1"}, {"name": "긴급", "priority_value": 9, "color": "red"}} {
		status, _ = testutil.Do(t, app, "POST", "/api/settings/priorities", p, token)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body = testutil.Do(t, app, "POST", "/api/settings/statuses", map[string]any{"name": "보류"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "색상은 필수 입력 사항입니다.", body["error"])

	status, list := testutil.DoList(t, app, "GET", "/api/settings/priorities", token)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list, 2)
	assert.Equal(t, "긴급", list[0]["name"])
	assert.Equal(t, float64(9), list[0]["priority_value"])

	status, list = testutil.DoList(t, app, "GET", "/api/settings/categories", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list, 1)

	status, list = testutil.DoList(t, app, "GET", "/api/settings/employees", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list, 1)

	status, list = testutil.DoList(t, app, "GET", "/api/settings/statuses", token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}
