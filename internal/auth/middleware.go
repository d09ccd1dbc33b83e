package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const CtxSessionKey = "session"

// SessionMiddleware rejects the request before any handler runs unless it
// carries a live server session.
func SessionMiddleware(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := bearerToken(c)
		if err != nil {
			return err
		}

		s, err := m.Resolve(c.UserContext(), tokenStr)
		if err != nil {
			if err != ErrInvalidSession {
				zap.L().Error("oturum okunamadı", zap.Error(err))
			}
			return fiber.NewError(fiber.StatusUnauthorized, "로그인이 필요합니다.")
		}

		c.Locals(CtxSessionKey, s)
		c.SetUserContext(WithSession(c.UserContext(), s))
		return c.Next()
	}
}

// Current returns the session of a request that passed SessionMiddleware.
func Current(c *fiber.Ctx) *Session {
	s, _ := c.Locals(CtxSessionKey).(*Session)
	return s
}

func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Current(c)
		if s == nil {
			return fiber.NewError(fiber.StatusForbidden, "권한 정보를 확인할 수 없습니다.")
		}
		for _, r := range allowedRoles {
			if r == s.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "이 작업을 수행할 권한이 없습니다.")
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "로그인이 필요합니다.")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization 형식은 'Bearer <token>' 이어야 합니다.")
	}
	return parts[1], nil
}

// optionalSession resolves a session if one is presented, for public pages
// that behave differently when signed in.
func optionalSession(c *fiber.Ctx, m *Manager) *Session {
	tokenStr, err := bearerToken(c)
	if err != nil {
		return nil
	}
	s, err := m.Resolve(c.UserContext(), tokenStr)
	if err != nil {
		return nil
	}
	return s
}
