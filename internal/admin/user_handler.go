package admin

import (
	"context"
	"errors"
	"strings"

	"erp-backend/internal/auth"
	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"
	"erp-backend/internal/records"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID                    uint           `json:"id"`
	Email                 string         `json:"email"`
	Username              string         `json:"username"`
	Nickname              string         `json:"nickname"`
	FullName              string         `json:"full_name"`
	Role                  string         `json:"role"`
	RoleBadge             listview.Badge `json:"role_badge"`
	PasswordResetRequired bool           `json:"password_reset_required"`
	CreatedAt             string         `json:"created_at"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Username:              u.Username,
		Nickname:              u.Nickname,
		FullName:              u.FullName,
		Role:                  u.Role,
		RoleBadge:             listview.Role.For(u.Role),
		PasswordResetRequired: u.PasswordResetRequired,
		CreatedAt:             listview.FormatDateTime(u.CreatedAt),
	}
}

func userText(u models.User) []string {
	return []string{u.Username, u.Email, u.FullName, u.Nickname}
}

func userRole(u models.User) string { return u.Role }

// GET /api/users?search=&role=
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.RunList(c.UserContext(), "users.list", func(ctx context.Context) ([]models.User, error) {
			var users []models.User
			err := database.DB.WithContext(ctx).Order("created_at desc").Find(&users).Error
			return users, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "사용자 목록을 불러오는 데 실패했습니다.")
		}

		users := listview.Filter(res.Data, c.Query("search"), userText, c.Query("role"), userRole)
		out := make([]UserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, toUserResponse(u))
		}
		return c.JSON(out)
	}
}

func formIdentity(form *records.UserForm) (username, email string) {
	return strings.TrimSpace(form.Username), strings.ToLower(strings.TrimSpace(form.Email))
}

// checkUnique rejects a username or email held by another row.
func checkUnique(c *fiber.Ctx, form *records.UserForm, exceptID uint) error {
	username, email := formIdentity(form)
	err := auth.CheckUserUnique(c.UserContext(), database.DB, username, email, exceptID)
	var fe *fiber.Error
	if err != nil && !errors.As(err, &fe) {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return err
}

// submitUser writes the form and reports a unique index violation with the
// field that was taken.
func submitUser(c *fiber.Ctx, form *records.UserForm, target records.Target, notFoundMsg string) (*models.User, error) {
	s := auth.Current(c)
	if s == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "로그인이 필요합니다.")
	}
	row, err := records.Submit(c.UserContext(), database.DB, s.Actor(), form, target)
	if err != nil {
		username, email := formIdentity(form)
		err = auth.UserConflict(c.UserContext(), database.DB, err, username, email, target.ID)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, records.HTTPError(err, notFoundMsg)
	}
	return row.(*models.User), nil
}

// sessionFieldsChanged reports whether an update touched anything a live
// session carries or authenticates with.
func sessionFieldsChanged(prev, next *models.User, passwordChanged bool) bool {
	return passwordChanged ||
		prev.Role != next.Role ||
		prev.Email != next.Email ||
		prev.Username != next.Username
}

func hashFormPassword(form *records.UserForm) error {
	if form.Password == "" {
		return nil
	}
	if len([]rune(form.Password)) < auth.MinPasswordLength {
		return fiber.NewError(fiber.StatusBadRequest, "비밀번호는 최소 6자 이상이어야 합니다.")
	}
	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "비밀번호 처리 중 오류가 발생했습니다.")
	}
	form.SetPasswordHash(hash)
	return nil
}

// POST /api/users (admin)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.UserForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return records.HTTPError(err, "")
		}
		if form.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "비밀번호는 필수 입력 사항입니다.")
		}
		if err := hashFormPassword(&form); err != nil {
			return err
		}
		if err := checkUnique(c, &form, 0); err != nil {
			return err
		}

		u, err := submitUser(c, &form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(*u))
	}
}

// PUT /api/users/:id (admin)
// Şifre boş bırakılırsa mevcut şifre korunur. Şifre, rol, e-posta veya
// kullanıcı adı değişirse kullanıcının açık oturumları kapatılır.
func UpdateUserHandler(m *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var form records.UserForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return records.HTTPError(err, "")
		}
		if err := hashFormPassword(&form); err != nil {
			return err
		}
		if err := checkUnique(c, &form, id); err != nil {
			return err
		}

		var prev models.User
		if err := database.DB.WithContext(c.UserContext()).First(&prev, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "사용자를 찾을 수 없습니다.")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		u, err := submitUser(c, &form, records.Update(id), "사용자를 찾을 수 없습니다.")
		if err != nil {
			return err
		}
		// rol, kimlik veya şifre değişirse açık oturumlar eski bilgiyi taşır
		if sessionFieldsChanged(&prev, u, form.Password != "") {
			if err := m.RevokeUser(c.UserContext(), id); err != nil {
				zap.L().Error("kullanıcı oturumları kapatılamadı", zap.Uint("user_id", id), zap.Error(err))
			}
		}
		return c.JSON(toUserResponse(*u))
	}
}
