package auth

import (
	"context"
	"errors"
	"testing"

	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/notification"
	"erp-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	enabled bool
	sentTo  string
	sentPw  string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) SendTemporaryPassword(_ context.Context, to, _, password string) error {
	f.sentTo = to
	f.sentPw = password
	return nil
}

func newAuthApp(m *Manager, mailer notification.Mailer) *fiber.App {
	app := testutil.NewApp()
	api := app.Group("/api")
	api.Get("/check", CheckHandler(m))

	a := api.Group("/auth")
	a.Post("/login", LoginHandler(m))
	a.Post("/register", RegisterHandler())
	a.Get("/username-available", UsernameAvailableHandler())
	a.Post("/password-strength", PasswordStrengthHandler())
	a.Post("/forgot-password", ForgotPasswordHandler(m, mailer))
	a.Get("/resolve", ResolveHandler(m))

	p := a.Group("", SessionMiddleware(m))
	p.Get("/session", SessionHandler())
	p.Get("/me", MeHandler(m))
	p.Post("/logout", LogoutHandler(m))
	p.Post("/change-password", ChangePasswordHandler(m))
	return app
}

func seedUser(t *testing.T, username, email, password string) models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := models.User{Username: username, Email: email, FullName: "김 철수", PasswordHash: hash, Role: models.RoleStaff}
	require.NoError(t, database.DB.Create(&u).Error)
	return u
}

func validRegistration() map[string]any {
	return map[string]any{
		"username":         "kimcs",
		"first_name":       "철수",
		"last_name":        "김",
		"email":            "Kim@Example.com",
		"password":         "secret12",
		"confirm_password": "secret12",
		"terms_agreed":     true,
	}
}

func TestRegisterHandler_CreatesUser(t *testing.T) {
	db := testutil.NewDB(t)
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/register", validRegistration(), "")
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "/login", body["redirect"])

	var u models.User
	require.NoError(t, db.Where("username = ?", "kimcs").First(&u).Error)
	assert.Equal(t, "kim@example.com", u.Email)
	assert.Equal(t, "철수 김", u.FullName)
	assert.Equal(t, "kimcs", u.Nickname)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, CheckPassword(u.PasswordHash, "secret12"))
}

func TestRegisterHandler_ValidationOrder(t *testing.T) {
	testutil.NewDB(t)
	app := newAuthApp(newTestManager(), notification.Noop{})

	cases := []struct {
		name   string
		modify func(map[string]any)
		msg    string
	}{
		{"missing first name", func(b map[string]any) { b["first_name"] = " " }, "모든 필수 항목을 입력해주세요."},
		{"mismatch before length", func(b map[string]any) { b["password"] = "abc"; b["confirm_password"] = "abd" }, "비밀번호가 일치하지 않습니다."},
		{"short password", func(b map[string]any) { b["password"] = "abc"; b["confirm_password"] = "abc" }, "비밀번호는 최소 6자 이상이어야 합니다."},
		{"short username", func(b map[string]any) { b["username"] = "kim" }, "아이디는 최소 4자 이상이어야 합니다."},
		{"terms", func(b map[string]any) { b["terms_agreed"] = false }, "필수 약관에 동의해주세요."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validRegistration()
			tc.modify(b)
			status, body := testutil.Do(t, app, "POST", "/api/auth/register", b, "")
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tc.msg, body["error"])
		})
	}

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegisterHandler_DuplicateUsername(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "other@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/register", validRegistration(), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "이미 사용 중인 아이디입니다.", body["error"])
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "someone", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/register", validRegistration(), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "이미 등록된 이메일 주소입니다.", body["error"])
}

func TestRegisterHandler_LostRaceIsConflict(t *testing.T) {
	db := testutil.NewDB(t)
	// eşzamanlı bir kayıt, kontrol geçtikten sonra aynı kullanıcı adını alır
	testutil.BeforeNextCreate(t, db, "users", func(tx *gorm.DB) error {
		return tx.Create(&models.User{Username: "kimcs", Email: "rival@example.com", PasswordHash: "x", Role: models.RoleUser}).Error
	})
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/register", validRegistration(), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "이미 사용 중인 아이디입니다.", body["error"])
}

func TestUserConflict(t *testing.T) {
	db := testutil.NewDB(t)
	seedUser(t, "someone", "kim@example.com", "secret12")
	ctx := context.Background()

	var fe *fiber.Error
	require.ErrorAs(t, UserConflict(ctx, db, gorm.ErrDuplicatedKey, "kimcs", "kim@example.com", 0), &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)
	assert.Equal(t, "이미 등록된 이메일 주소입니다.", fe.Message)

	require.ErrorAs(t, UserConflict(ctx, db, gorm.ErrDuplicatedKey, "kimcs", "new@example.com", 0), &fe)
	assert.Equal(t, "이미 사용 중인 아이디입니다.", fe.Message)

	other := errors.New("disk full")
	assert.Same(t, other, UserConflict(ctx, db, other, "kimcs", "new@example.com", 0))
}

func TestUsernameAvailableHandler(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "GET", "/api/auth/username-available?username=kim", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "아이디는 최소 4자 이상이어야 합니다.", body["error"])

	status, body = testutil.Do(t, app, "GET", "/api/auth/username-available?username=kimcs", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["username_available"])
	assert.Equal(t, "이미 사용 중인 아이디입니다.", body["message"])

	status, body = testutil.Do(t, app, "GET", "/api/auth/username-available?username=leeyh", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["username_available"])
	assert.Equal(t, "사용 가능한 아이디입니다.", body["message"])
}

func TestPasswordStrengthHandler(t *testing.T) {
	app := newAuthApp(newTestManager(), notification.Noop{})
	status, body := testutil.Do(t, app, "POST", "/api/auth/password-strength", map[string]any{"password": "Abcdefghij1!"}, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(5), body["score"])
	assert.Equal(t, "강함", body["label"])
}

func TestLoginHandler_EmailMethod(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"email": "KIM@example.com", "password": "secret12"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, true, body["is_authenticated"])
	assert.Equal(t, "/dashboard", body["redirect"])

	for _, creds := range []map[string]any{
		{"email": "kim@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "secret12"},
	} {
		status, body = testutil.Do(t, app, "POST", "/api/auth/login", creds, "")
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "이메일 또는 비밀번호가 올바르지 않습니다.", body["error"])
	}
}

func TestLoginHandler_UsernameMethod(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"method": "username", "username": "nobody", "password": "x"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "존재하지 않는 사용자 이름입니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"method": "username", "username": "kimcs", "password": "x"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "비밀번호가 올바르지 않습니다.", body["error"])

	status, _ = testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"method": "username", "username": "kimcs", "password": "secret12"}, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLoginHandler_BootstrapDoesNotTouchDatabase(t *testing.T) {
	prev := database.DB
	database.DB = nil
	t.Cleanup(func() { database.DB = prev })

	m := newTestManager()
	app := newAuthApp(m, notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"method": "username", "username": "admin", "password": "admin123"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["is_authenticated"])
	assert.Equal(t, "/dashboard", body["redirect"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, true, user["bootstrap"])

	status, body = testutil.Do(t, app, "GET", "/api/auth/me", nil, body["token"].(string))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin", body["username"])
}

func TestLoginHandler_ResetRequiredRedirectsToChangePassword(t *testing.T) {
	db := testutil.NewDB(t)
	u := seedUser(t, "kimcs", "kim@example.com", "secret12")
	require.NoError(t, db.Model(&u).Update("password_reset_required", true).Error)
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"email": "kim@example.com", "password": "secret12"}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/change-password", body["redirect"])
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"email": email, "password": password}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	return body["token"].(string)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "GET", "/api/auth/session", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "/login", body["redirect"])

	status, body = testutil.Do(t, app, "GET", "/api/auth/me", nil, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "로그인이 필요합니다.", body["error"])
}

func TestSessionAndLogout(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})
	token := login(t, app, "kim@example.com", "secret12")

	status, body := testutil.Do(t, app, "GET", "/api/auth/session", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["is_authenticated"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/login", body["redirect"])

	status, _ = testutil.Do(t, app, "GET", "/api/auth/session", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestChangePasswordHandler(t *testing.T) {
	db := testutil.NewDB(t)
	u := seedUser(t, "kimcs", "kim@example.com", "secret12")
	require.NoError(t, db.Model(&u).Update("password_reset_required", true).Error)
	app := newAuthApp(newTestManager(), notification.Noop{})
	token := login(t, app, "kim@example.com", "secret12")

	status, body := testutil.Do(t, app, "POST", "/api/auth/change-password", map[string]any{
		"current_password": "secret12", "new_password": "abc", "confirm_password": "abc",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "새 비밀번호는 최소 6자 이상이어야 합니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/change-password", map[string]any{
		"current_password": "secret12", "new_password": "newpass1", "confirm_password": "newpass2",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "새 비밀번호와 확인 비밀번호가 일치하지 않습니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/change-password", map[string]any{
		"current_password": "wrong", "new_password": "newpass1", "confirm_password": "newpass1",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "현재 비밀번호가 올바르지 않습니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/change-password", map[string]any{
		"current_password": "secret12", "new_password": "newpass1", "confirm_password": "newpass1",
	}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "비밀번호가 성공적으로 변경되었습니다.", body["message"])
	assert.Equal(t, "/dashboard", body["redirect"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	assert.False(t, reloaded.PasswordResetRequired)
	assert.True(t, CheckPassword(reloaded.PasswordHash, "newpass1"))

	status, body = testutil.Do(t, app, "GET", "/api/auth/session", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["user"].(map[string]any)["password_reset_required"])
}

func TestChangePasswordHandler_BootstrapForbidden(t *testing.T) {
	m := newTestManager()
	app := newAuthApp(m, notification.Noop{})
	token, _, err := m.IssueBootstrap(context.Background())
	require.NoError(t, err)

	status, _ := testutil.Do(t, app, "POST", "/api/auth/change-password", map[string]any{
		"current_password": "admin123", "new_password": "newpass1", "confirm_password": "newpass1",
	}, token)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestForgotPasswordHandler_WithoutMail(t *testing.T) {
	db := testutil.NewDB(t)
	u := seedUser(t, "kimcs", "kim@example.com", "secret12")
	m := newTestManager()
	app := newAuthApp(m, notification.Noop{})
	oldToken := login(t, app, "kim@example.com", "secret12")

	status, body := testutil.Do(t, app, "POST", "/api/auth/forgot-password", map[string]any{"method": "email", "email": ""}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "이메일을 입력해주세요.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/forgot-password", map[string]any{"method": "email", "email": "none@example.com"}, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "등록되지 않은 이메일입니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/forgot-password", map[string]any{"method": "username", "username": "nobody"}, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "존재하지 않는 아이디입니다.", body["error"])

	status, body = testutil.Do(t, app, "POST", "/api/auth/forgot-password", map[string]any{"method": "email", "email": "kim@example.com"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	temp := body["temp_password"].(string)
	assert.Len(t, temp, 10)
	assert.Equal(t, "임시 비밀번호가 발급되었습니다: "+temp, body["message"])
	assert.Equal(t, "/login", body["redirect"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	assert.True(t, reloaded.PasswordResetRequired)
	assert.True(t, CheckPassword(reloaded.PasswordHash, temp))

	status, _ = testutil.Do(t, app, "GET", "/api/auth/session", nil, oldToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = testutil.Do(t, app, "POST", "/api/auth/login", map[string]any{"email": "kim@example.com", "password": temp}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/change-password", body["redirect"])
}

func TestForgotPasswordHandler_WithMail(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	mailer := &fakeMailer{enabled: true}
	app := newAuthApp(newTestManager(), mailer)

	status, body := testutil.Do(t, app, "POST", "/api/auth/forgot-password", map[string]any{"method": "username", "username": "kimcs"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "임시 비밀번호가 이메일로 발송되었습니다.", body["message"])
	assert.Nil(t, body["temp_password"])
	assert.Equal(t, "kim@example.com", mailer.sentTo)
	assert.Len(t, mailer.sentPw, 10)
}

func TestResolveHandler(t *testing.T) {
	testutil.NewDB(t)
	seedUser(t, "kimcs", "kim@example.com", "secret12")
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "GET", "/api/auth/resolve?path=/dashboard", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/login", body["redirect"])

	token := login(t, app, "kim@example.com", "secret12")
	status, body = testutil.Do(t, app, "GET", "/api/auth/resolve?path=/login", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/dashboard", body["redirect"])
}

func TestCheckHandler(t *testing.T) {
	testutil.NewDB(t)
	app := newAuthApp(newTestManager(), notification.Noop{})

	status, body := testutil.Do(t, app, "GET", "/api/check", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["is_authenticated"])
	assert.Equal(t, "memory", body["session_store"])
	assert.Equal(t, true, body["database"].(map[string]any)["success"])
}
