package server

import (
	"strings"

	"erp-backend/internal/admin"
	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/config"
	"erp-backend/internal/dashboard"
	"erp-backend/internal/httpx"
	"erp-backend/internal/inventory"
	"erp-backend/internal/logging"
	"erp-backend/internal/metrics"
	"erp-backend/internal/models"
	"erp-backend/internal/notification"
	"erp-backend/internal/production"
	"erp-backend/internal/purchase"
	"erp-backend/internal/settings"
	"erp-backend/internal/shipping"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// New builds the HTTP app with every route registered.
func New(cfg *config.Config, m *auth.Manager, mailer notification.Mailer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "erp-backend",
		ErrorHandler: httpx.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logging.AccessLog())
	app.Use(metrics.Middleware())

	// CORS origins virgülle ayrılmış gelir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Public
	api.Get("/check", auth.CheckHandler(m))
	api.Post("/auth/login", auth.LoginHandler(m))
	api.Post("/auth/register", auth.RegisterHandler())
	api.Get("/auth/username-available", auth.UsernameAvailableHandler())
	api.Post("/auth/password-strength", auth.PasswordStrengthHandler())
	api.Post("/auth/forgot-password", auth.ForgotPasswordHandler(m, mailer))
	api.Get("/auth/resolve", auth.ResolveHandler(m))

	// Protected
	protected := api.Group("")
	protected.Use(auth.SessionMiddleware(m))

	protected.Get("/auth/session", auth.SessionHandler())
	protected.Get("/auth/me", auth.MeHandler(m))
	protected.Post("/auth/logout", auth.LogoutHandler(m))
	protected.Post("/auth/change-password", auth.ChangePasswordHandler(m))

	protected.Get("/dashboard/stats", dashboard.StatsHandler(cfg))

	// Stok
	protected.Get("/inventory", inventory.ListItemsHandler())
	protected.Get("/inventory/export", inventory.ExportItemsHandler())
	protected.Post("/inventory", inventory.CreateItemHandler())
	protected.Put("/inventory/:id", inventory.UpdateItemHandler())

	// Satın alma talepleri
	protected.Get("/purchase-requests", purchase.ListHandler())
	protected.Post("/purchase-requests", purchase.CreateHandler())
	protected.Put("/purchase-requests/:id", purchase.UpdateHandler())

	// Üretim planları
	protected.Get("/production-plans", production.ListHandler(cfg))
	protected.Post("/production-plans", production.CreateHandler())
	protected.Put("/production-plans/:id", production.UpdateHandler())
	protected.Post("/production-plans/:id/materials", production.AddMaterialHandler())

	// Sevkiyat planları
	protected.Get("/shipping-plans", shipping.ListHandler(cfg))
	protected.Post("/shipping-plans", shipping.CreateHandler())
	protected.Put("/shipping-plans/:id", shipping.UpdateHandler())
	protected.Post("/shipping-plans/:id/items", shipping.AddItemHandler())

	// Kullanıcılar
	protected.Get("/users", admin.ListUsersHandler())
	protected.Post("/users", auth.RequireRole(models.RoleAdmin), admin.CreateUserHandler())
	protected.Put("/users/:id", auth.RequireRole(models.RoleAdmin), admin.UpdateUserHandler(m))

	// Ayarlar
	s := protected.Group("/settings")
	s.Get("/company", settings.GetCompanyHandler())
	s.Put("/company", settings.UpdateCompanyHandler())
	s.Get("/categories", settings.ListCategoriesHandler())
	s.Post("/categories", settings.CreateCategoryHandler())
	s.Get("/employees", settings.ListEmployeesHandler())
	s.Post("/employees", settings.CreateEmployeeHandler())
	s.Get("/priorities", settings.ListPrioritiesHandler())
	s.Post("/priorities", settings.CreatePriorityHandler())
	s.Get("/statuses", settings.ListStatusesHandler())
	s.Post("/statuses", settings.CreateStatusHandler())

	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	return app
}
