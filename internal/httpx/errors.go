package httpx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const LoginPath = "/login"

// ErrorHandler renders every handler error as {"error": message}. A 401 also
// tells the page where to go.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if !errors.As(err, &e) {
		zap.L().Error("beklenmeyen hata", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "서버 오류가 발생했습니다.",
		})
	}

	body := fiber.Map{"error": e.Message}
	if e.Code == fiber.StatusUnauthorized {
		body["redirect"] = LoginPath
	}
	return c.Status(e.Code).JSON(body)
}
