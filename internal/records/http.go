package records

import (
	"strconv"

	"erp-backend/internal/auth"
	"erp-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

// ParseID reads the :id route parameter.
func ParseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "잘못된 ID입니다.")
	}
	return uint(id), nil
}

// Decode parses the request body into form.
func Decode(c *fiber.Ctx, form Form) error {
	if err := c.BodyParser(form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
	}
	return nil
}

// SubmitRequest submits form for the signed-in user and maps failures to
// HTTP errors.
func SubmitRequest(c *fiber.Ctx, form Form, target Target, notFoundMsg string) (any, error) {
	s := auth.Current(c)
	if s == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "로그인이 필요합니다.")
	}
	row, err := Submit(c.UserContext(), database.DB, s.Actor(), form, target)
	if err != nil {
		return nil, HTTPError(err, notFoundMsg)
	}
	return row, nil
}
