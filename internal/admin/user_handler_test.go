package admin

import (
	"fmt"
	"testing"

	"erp-backend/internal/auth"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/testutil"
	"erp-backend/internal/testutil/sessiontest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	app     *fiber.App
	admin   string
	staff   string
	staffID uint
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	testutil.NewDB(t)
	m := sessiontest.NewManager()
	app, api := sessiontest.NewApp(m)
	api.Get("/users", ListUsersHandler())
	api.Post("/users", auth.RequireRole(models.RoleAdmin), CreateUserHandler())
	api.Put("/users/:id", auth.RequireRole(models.RoleAdmin), UpdateUserHandler(m))

	staff := sessiontest.SeedUser(t, "staff01", models.RoleStaff)
	return fixture{
		app:     app,
		admin:   sessiontest.BootstrapToken(t, m),
		staff:   sessiontest.Token(t, m, &staff),
		staffID: staff.ID,
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	status, body := testutil.Do(t, f.app, "POST", "/api/users", map[string]any{
		"email": "new@example.com", "username": "newbie", "password": "secret12",
	}, f.staff)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "이 작업을 수행할 권한이 없습니다.", body["error"])

	status, body = testutil.Do(t, f.app, "POST", "/api/users", map[string]any{
		"email": "New@Example.com", "username": "newbie", "password": "secret12", "role": "manager",
	}, f.admin)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "new@example.com", body["email"])
	assert.Equal(t, "매니저", body["role_badge"].(map[string]any)["label"])

	var u models.User
	require.NoError(t, database.DB.Where("username = ?", "newbie").First(&u).Error)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret12"))
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)

	status, body := testutil.Do(t, f.app, "POST", "/api/users", map[string]any{"username": "x1234"}, f.admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "이메일은 필수 입력 사항입니다.", body["error"])

	status, body = testutil.Do(t, f.app, "POST", "/api/users", map[string]any{"email": "a@b.c", "username": "x1234"}, f.admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "비밀번호는 필수 입력 사항입니다.", body["error"])

	status, body = testutil.Do(t, f.app, "POST", "/api/users", map[string]any{
		"email": "other@example.com", "username": "staff01", "password": "secret12",
	}, f.admin)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "이미 사용 중인 아이디입니다.", body["error"])
}

func TestUpdateUserKeepsPasswordAndRevokesOnChange(t *testing.T) {
	f := newFixture(t)
	path := "/api/users/1"

	status, body := testutil.Do(t, f.app, "PUT", path, map[string]any{
		"email": "staff01@example.com", "username": "staff01", "role": "staff", "full_name": "박 직원",
	}, f.admin)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "박 직원", body["full_name"])

	var u models.User
	require.NoError(t, database.DB.First(&u, f.staffID).Error)
	assert.Equal(t, "unused", u.PasswordHash)

	// sadece profil değiştiyse oturum açık kalır
	status, _ = testutil.Do(t, f.app, "GET", "/api/users", nil, f.staff)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = testutil.Do(t, f.app, "PUT", path, map[string]any{
		"email": "staff01@example.com", "username": "staff01", "role": "staff", "password": "another1",
	}, f.admin)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = testutil.Do(t, f.app, "GET", "/api/users", nil, f.staff)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUpdateUserRoleChangeRevokesSessions(t *testing.T) {
	testutil.NewDB(t)
	m := sessiontest.NewManager()
	app, api := sessiontest.NewApp(m)
	api.Post("/users", auth.RequireRole(models.RoleAdmin), CreateUserHandler())
	api.Put("/users/:id", auth.RequireRole(models.RoleAdmin), UpdateUserHandler(m))

	eve := sessiontest.SeedUser(t, "eve01", models.RoleAdmin)
	eveToken := sessiontest.Token(t, m, &eve)
	admin := sessiontest.BootstrapToken(t, m)

	status, body := testutil.Do(t, app, "PUT", fmt.Sprintf("/api/users/%d", eve.ID), map[string]any{
		"email": "eve01@example.com", "username": "eve01", "role": "staff",
	}, admin)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "staff", body["role"])

	// düşürülen admin eski oturumuyla admin işlemi yapamaz
	status, _ = testutil.Do(t, app, "POST", "/api/users", map[string]any{
		"email": "mallory@example.com", "username": "mallory", "password": "secret12", "role": "admin",
	}, eveToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	var n int64
	require.NoError(t, database.DB.Model(&models.User{}).Where("username = ?", "mallory").Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateUserMissing(t *testing.T) {
	f := newFixture(t)

	status, body := testutil.Do(t, f.app, "PUT", "/api/users/99", map[string]any{
		"email": "ghost@example.com", "username": "ghost",
	}, f.admin)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "사용자를 찾을 수 없습니다.", body["error"])
}

func TestCreateUserLostRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	testutil.BeforeNextCreate(t, database.DB, "users", func(tx *gorm.DB) error {
		return tx.Create(&models.User{Username: "newbie", Email: "rival@example.com", PasswordHash: "x", Role: models.RoleUser}).Error
	})

	status, body := testutil.Do(t, f.app, "POST", "/api/users", map[string]any{
		"email": "new@example.com", "username": "newbie", "password": "secret12",
	}, f.admin)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "이미 사용 중인 아이디입니다.", body["error"])
}

func TestListUsersRoleFilterAndBadges(t *testing.T) {
	f := newFixture(t)
	sessiontest.SeedUser(t, "boss01", models.RoleAdmin)
	sessiontest.SeedUser(t, "guest01", "guest")

	status, list := testutil.DoList(t, f.app, "GET", "/api/users?role=admin", f.staff)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "관리자", list[0]["role_badge"].(map[string]any)["label"])

	status, list = testutil.DoList(t, f.app, "GET", "/api/users?search=guest", f.staff)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list, 1)
	badge := list[0]["role_badge"].(map[string]any)
	assert.Equal(t, "guest", badge["label"])
	assert.Equal(t, "bg-gray-100 text-gray-800", badge["class"])
}
