package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/notification"
	"erp-backend/internal/query"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	LoginMethodEmail    = "email"
	LoginMethodUsername = "username"
)

type LoginRequest struct {
	Method   string `json:"method"` // email (varsayılan) veya username
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username         string `json:"username"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Nickname         string `json:"nickname"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirm_password"`
	TermsAgreed      bool   `json:"terms_agreed"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ForgotPasswordRequest struct {
	Method   string `json:"method"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID                    uint   `json:"id"`
	Email                 string `json:"email"`
	Username              string `json:"username"`
	Nickname              string `json:"nickname,omitempty"`
	FullName              string `json:"full_name"`
	Role                  string `json:"role"`
	PasswordResetRequired bool   `json:"password_reset_required"`
	Bootstrap             bool   `json:"bootstrap,omitempty"`
}

type AuthResponse struct {
	Token           string       `json:"token"`
	ExpiresAt       string       `json:"expires_at"`
	User            UserResponse `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	Redirect        string       `json:"redirect"`
}

func sessionUser(s *Session) UserResponse {
	return UserResponse{
		ID:                    s.UserID,
		Email:                 s.Email,
		Username:              s.Username,
		FullName:              s.FullName,
		Role:                  s.Role,
		PasswordResetRequired: s.PasswordResetRequired,
		Bootstrap:             s.Bootstrap,
	}
}

func profileUser(u *models.User) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Username:              u.Username,
		Nickname:              u.Nickname,
		FullName:              u.FullName,
		Role:                  u.Role,
		PasswordResetRequired: u.PasswordResetRequired,
	}
}

// findUser loads one user by a unique column. A missing row comes back as a
// query error with CodeNotFound.
func findUser(ctx context.Context, column, value string) query.Result[*models.User] {
	return query.Run(ctx, "auth.user_by_"+column, func(ctx context.Context) (*models.User, error) {
		var u models.User
		if err := database.DB.WithContext(ctx).Where(column+" = ?", value).First(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	})
}

func isNotFound(e *query.Error) bool { return e != nil && e.Code == query.CodeNotFound }

func authResponse(token string, s *Session) AuthResponse {
	return AuthResponse{
		Token:           token,
		ExpiresAt:       s.ExpiresAt.Format(time.RFC3339),
		User:            sessionUser(s),
		IsAuthenticated: true,
		Redirect:        landing(s),
	}
}

// POST /api/auth/login
func LoginHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}

		method := strings.ToLower(strings.TrimSpace(body.Method))
		if method == "" {
			method = LoginMethodEmail
		}
		var identifier string
		switch method {
		case LoginMethodEmail:
			identifier = strings.ToLower(strings.TrimSpace(body.Email))
		case LoginMethodUsername:
			identifier = strings.TrimSpace(body.Username)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "지원하지 않는 로그인 방식입니다.")
		}
		if identifier == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "모든 필수 항목을 입력해주세요.")
		}

		// bootstrap admin, users tablosuna hiç dokunulmaz
		if m.MatchBootstrap(method, identifier, body.Password) {
			token, s, err := m.IssueBootstrap(c.UserContext())
			if err != nil {
				zap.L().Error("bootstrap oturumu açılamadı", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
			}
			return c.JSON(authResponse(token, s))
		}

		res := findUser(c.UserContext(), method, identifier)
		if !res.OK() && !isNotFound(res.Err) {
			return fiber.NewError(fiber.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
		}

		switch method {
		case LoginMethodUsername:
			if isNotFound(res.Err) {
				return fiber.NewError(fiber.StatusUnauthorized, "존재하지 않는 사용자 이름입니다.")
			}
			if !CheckPassword(res.Data.PasswordHash, body.Password) {
				return fiber.NewError(fiber.StatusUnauthorized, "비밀번호가 올바르지 않습니다.")
			}
		default:
			if isNotFound(res.Err) || !CheckPassword(res.Data.PasswordHash, body.Password) {
				return fiber.NewError(fiber.StatusUnauthorized, "이메일 또는 비밀번호가 올바르지 않습니다.")
			}
		}

		token, s, err := m.Issue(c.UserContext(), res.Data)
		if err != nil {
			zap.L().Error("oturum açılamadı", zap.Uint("user_id", res.Data.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "로그인 처리 중 오류가 발생했습니다.")
		}
		return c.JSON(authResponse(token, s))
	}
}

// POST /api/auth/register
func RegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		body.Nickname = strings.TrimSpace(body.Nickname)
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		if body.Username == "" || body.FirstName == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "모든 필수 항목을 입력해주세요.")
		}
		if body.Password != body.ConfirmPassword {
			return fiber.NewError(fiber.StatusBadRequest, "비밀번호가 일치하지 않습니다.")
		}
		if len([]rune(body.Password)) < MinPasswordLength {
			return fiber.NewError(fiber.StatusBadRequest, "비밀번호는 최소 6자 이상이어야 합니다.")
		}
		if len([]rune(body.Username)) < MinUsernameLength {
			return fiber.NewError(fiber.StatusBadRequest, "아이디는 최소 4자 이상이어야 합니다.")
		}
		if !body.TermsAgreed {
			return fiber.NewError(fiber.StatusBadRequest, "필수 약관에 동의해주세요.")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "회원가입 처리 중 오류가 발생했습니다.")
		}

		nickname := body.Nickname
		if nickname == "" {
			nickname = body.Username
		}
		user := models.User{
			Email:            body.Email,
			Username:         body.Username,
			Nickname:         nickname,
			FirstName:        body.FirstName,
			LastName:         body.LastName,
			FullName:         strings.TrimSpace(body.FirstName + " " + body.LastName),
			PasswordHash:     hash,
			Role:             models.RoleUser,
			MarketingConsent: body.MarketingConsent,
		}

		// kimlik bilgisi ve profil tek transaction içinde yazılır
		err = database.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := CheckUserUnique(c.UserContext(), tx, user.Username, user.Email, 0); err != nil {
				return err
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			err = UserConflict(c.UserContext(), database.DB, err, user.Username, user.Email, 0)
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			zap.L().Error("kullanıcı kaydı başarısız", zap.String("username", user.Username), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "회원가입 처리 중 오류가 발생했습니다.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "회원가입이 완료되었습니다. 로그인해주세요.",
			"user":     profileUser(&user),
			"redirect": PathLogin,
		})
	}
}

// GET /api/auth/username-available?username=
func UsernameAvailableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := strings.TrimSpace(c.Query("username"))
		if len([]rune(username)) < MinUsernameLength {
			return fiber.NewError(fiber.StatusBadRequest, "아이디는 최소 4자 이상이어야 합니다.")
		}

		res := query.Run(c.UserContext(), "auth.username_count", func(ctx context.Context) (int64, error) {
			var count int64
			err := database.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
			return count, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "아이디 확인 중 오류가 발생했습니다.")
		}
		if res.Data > 0 {
			return c.JSON(fiber.Map{"username_available": false, "message": msgUsernameTaken})
		}
		return c.JSON(fiber.Map{"username_available": true, "message": "사용 가능한 아이디입니다."})
	}
}

// POST /api/auth/password-strength
func PasswordStrengthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PasswordStrengthRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}
		score := PasswordStrength(body.Password)
		return c.JSON(fiber.Map{
			"score": score,
			"label": PasswordStrengthLabel(score),
		})
	}
}

// POST /api/auth/change-password
func ChangePasswordHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Current(c)

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}
		if len([]rune(body.NewPassword)) < MinPasswordLength {
			return fiber.NewError(fiber.StatusBadRequest, "새 비밀번호는 최소 6자 이상이어야 합니다.")
		}
		if body.NewPassword != body.ConfirmPassword {
			return fiber.NewError(fiber.StatusBadRequest, "새 비밀번호와 확인 비밀번호가 일치하지 않습니다.")
		}
		if s.Bootstrap {
			return fiber.NewError(fiber.StatusForbidden, "기본 관리자 계정의 비밀번호는 설정에서 관리됩니다.")
		}

		var user models.User
		if err := database.DB.WithContext(c.UserContext()).First(&user, s.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "사용자 정보를 찾을 수 없습니다.")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 변경 중 오류가 발생했습니다.")
		}
		if !CheckPassword(user.PasswordHash, body.CurrentPassword) {
			return fiber.NewError(fiber.StatusBadRequest, "현재 비밀번호가 올바르지 않습니다.")
		}

		hash, err := HashPassword(body.NewPassword)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 변경 중 오류가 발생했습니다.")
		}
		if err := database.DB.WithContext(c.UserContext()).Model(&user).Updates(map[string]any{
			"password_hash":           hash,
			"password_reset_required": false,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 변경 중 오류가 발생했습니다.")
		}
		user.PasswordHash = hash
		user.PasswordResetRequired = false

		if err := m.Refresh(c.UserContext(), s, &user); err != nil {
			zap.L().Error("oturum güncellenemedi", zap.String("session_id", s.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 변경 중 오류가 발생했습니다.")
		}

		return c.JSON(fiber.Map{
			"message":  "비밀번호가 성공적으로 변경되었습니다.",
			"user":     sessionUser(s),
			"redirect": PathDashboard,
		})
	}
}

// POST /api/auth/forgot-password
func ForgotPasswordHandler(m *Manager, mailer notification.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}

		var res query.Result[*models.User]
		switch strings.ToLower(strings.TrimSpace(body.Method)) {
		case LoginMethodUsername:
			username := strings.TrimSpace(body.Username)
			if username == "" {
				return fiber.NewError(fiber.StatusBadRequest, "아이디를 입력해주세요.")
			}
			res = findUser(c.UserContext(), "username", username)
			if isNotFound(res.Err) {
				return fiber.NewError(fiber.StatusNotFound, "존재하지 않는 아이디입니다.")
			}
		default:
			email := strings.ToLower(strings.TrimSpace(body.Email))
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "이메일을 입력해주세요.")
			}
			res = findUser(c.UserContext(), "email", email)
			if isNotFound(res.Err) {
				return fiber.NewError(fiber.StatusNotFound, "등록되지 않은 이메일입니다.")
			}
		}
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 재설정 중 오류가 발생했습니다.")
		}
		user := res.Data

		temp, err := TemporaryPassword()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 재설정 중 오류가 발생했습니다.")
		}
		hash, err := HashPassword(temp)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 재설정 중 오류가 발생했습니다.")
		}
		if err := database.DB.WithContext(c.UserContext()).Model(user).Updates(map[string]any{
			"password_hash":           hash,
			"password_reset_required": true,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 재설정 중 오류가 발생했습니다.")
		}

		// eski şifreyle açılmış oturumlar geçersiz
		if err := m.RevokeUser(c.UserContext(), user.ID); err != nil {
			zap.L().Error("kullanıcı oturumları kapatılamadı", zap.Uint("user_id", user.ID), zap.Error(err))
		}

		if !mailer.Enabled() {
			return c.JSON(fiber.Map{
				"message":       "임시 비밀번호가 발급되었습니다: " + temp,
				"temp_password": temp,
				"redirect":      PathLogin,
			})
		}

		name := user.FullName
		if name == "" {
			name = user.Username
		}
		if err := mailer.SendTemporaryPassword(c.UserContext(), user.Email, name, temp); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "임시 비밀번호 메일 발송에 실패했습니다. 관리자에게 문의해주세요.")
		}
		return c.JSON(fiber.Map{
			"message":  "임시 비밀번호가 이메일로 발송되었습니다.",
			"redirect": PathLogin,
		})
	}
}

// GET /api/auth/session
func SessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Current(c)
		return c.JSON(fiber.Map{
			"session":          s,
			"user":             sessionUser(s),
			"is_authenticated": true,
		})
	}
}

// GET /api/auth/me
// Profil satırını yeniden okur, değişmişse oturumu da günceller.
func MeHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Current(c)
		if s.Bootstrap {
			return c.JSON(sessionUser(s))
		}

		res := query.Run(c.UserContext(), "auth.me", func(ctx context.Context) (*models.User, error) {
			var u models.User
			if err := database.DB.WithContext(ctx).First(&u, s.UserID).Error; err != nil {
				return nil, err
			}
			return &u, nil
		})
		if isNotFound(res.Err) {
			return fiber.NewError(fiber.StatusNotFound, "사용자 정보를 찾을 수 없습니다.")
		}
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "사용자 정보를 불러오는 데 실패했습니다.")
		}

		if res.Data.Role != s.Role || res.Data.FullName != s.FullName || res.Data.PasswordResetRequired != s.PasswordResetRequired {
			if err := m.Refresh(c.UserContext(), s, res.Data); err != nil {
				zap.L().Warn("oturum güncellenemedi", zap.String("session_id", s.ID), zap.Error(err))
			}
		}
		return c.JSON(profileUser(res.Data))
	}
}

// POST /api/auth/logout
func LogoutHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Current(c)
		if err := m.Revoke(c.UserContext(), s.ID); err != nil {
			zap.L().Error("oturum kapatılamadı", zap.String("session_id", s.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "로그아웃 처리 중 오류가 발생했습니다.")
		}
		return c.JSON(fiber.Map{
			"message":  "로그아웃되었습니다.",
			"redirect": PathLogin,
		})
	}
}

// GET /api/auth/resolve?path=
func ResolveHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := optionalSession(c, m)
		return c.JSON(ResolveRoute(c.Query("path", PathHome), s))
	}
}

// GET /api/check
func CheckHandler(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := optionalSession(c, m)

		resp := fiber.Map{
			"is_authenticated": s != nil,
			"session":          s,
			"session_store":    m.Store().Name(),
			"checked_at":       time.Now().Format("2006-01-02 15:04:05"),
		}
		if database.DB != nil {
			resp["database"] = query.Ping(c.UserContext(), database.DB)
		} else {
			resp["database"] = query.PingResult{Error: &query.Error{Message: "database not initialized", Name: "config"}}
		}
		return c.JSON(resp)
	}
}
