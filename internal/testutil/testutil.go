package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"erp-backend/internal/config"
	"erp-backend/internal/database"
	"erp-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const JWTSecret = "erp-test-jwt-secret-0123456789abcdef"

// Config returns a configuration usable by handler tests.
func Config() *config.Config {
	return &config.Config{
		HTTPPort:               "0",
		DatabaseDriver:         "sqlite",
		DatabaseDSN:            ":memory:",
		JWTSecret:              JWTSecret,
		SessionTTL:             time.Hour,
		SessionStore:           "memory",
		BootstrapAdminEmail:    "admin@example.com",
		BootstrapAdminUsername: "admin",
		BootstrapAdminPassword: "admin123",
		LowStockThreshold:      30,
		CountConcurrency:       4,
	}
}

// NewDB opens a migrated in-memory database and installs it as database.DB.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewApp returns a fiber app with the production error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
}

// Do sends a request with an optional JSON body and bearer token and decodes
// the JSON response into a map.
func Do(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	status, raw := DoRaw(t, app, method, path, body, token)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

// DoList is like Do for endpoints answering with a JSON array.
func DoList(t *testing.T, app *fiber.App, method, path string, token string) (int, []map[string]any) {
	t.Helper()
	status, raw := DoRaw(t, app, method, path, nil, token)
	var out []map[string]any
	if status < 300 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func DoRaw(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// BeforeNextCreate runs fn once, inside the same transaction, right before the
// next insert into table. Tests use it to let a competing row win the unique
// index after the handler's own duplicate check passed.
func BeforeNextCreate(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB) error) {
	t.Helper()
	fired := false
	name := "test:before_next_create_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := fn(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			tx.AddError(err)
		}
	}))
}
