package auth

import (
	"context"
	"errors"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	msgUsernameTaken = "이미 사용 중인 아이디입니다."
	msgEmailTaken    = "이미 등록된 이메일 주소입니다."
)

// CheckUserUnique returns a 409 when another row (id <> exceptID) holds the
// username or email.
func CheckUserUnique(ctx context.Context, db *gorm.DB, username, email string, exceptID uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, msgUsernameTaken)
	}
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, msgEmailTaken)
	}
	return nil
}

// UserConflict turns a unique index violation into the 409 naming the taken
// field. Any other error comes back unchanged.
func UserConflict(ctx context.Context, db *gorm.DB, err error, username, email string, exceptID uint) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	// eşzamanlı kayıt kazandı, hangi alanın alındığını tekrar sor
	if cerr := CheckUserUnique(ctx, db, username, email, exceptID); cerr != nil {
		var fe *fiber.Error
		if errors.As(cerr, &fe) {
			return fe
		}
	}
	return fiber.NewError(fiber.StatusConflict, msgUsernameTaken)
}
