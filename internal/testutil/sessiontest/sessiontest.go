// Package sessiontest issues real sessions for handler tests outside auth.
package sessiontest

import (
	"context"
	"testing"

	"erp-backend/internal/auth"
	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func NewManager() *auth.Manager {
	return auth.NewManager(testutil.Config(), auth.NewMemoryStore())
}

// NewApp returns a test app and a router behind the session middleware.
func NewApp(m *auth.Manager) (*fiber.App, fiber.Router) {
	app := testutil.NewApp()
	return app, app.Group("/api", auth.SessionMiddleware(m))
}

// SeedUser inserts a users row with the given role.
func SeedUser(t *testing.T, username, role string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: "unused",
		Role:         role,
	}
	require.NoError(t, database.DB.Create(&u).Error)
	return u
}

// Token opens a session for u.
func Token(t *testing.T, m *auth.Manager, u *models.User) string {
	t.Helper()
	token, _, err := m.Issue(context.Background(), u)
	require.NoError(t, err)
	return token
}

func BootstrapToken(t *testing.T, m *auth.Manager) string {
	t.Helper()
	token, _, err := m.IssueBootstrap(context.Background())
	require.NoError(t, err)
	return token
}
