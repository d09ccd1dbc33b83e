package dashboard

import (
	"context"

	"erp-backend/internal/config"
	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type StatsResponse struct {
	TotalProducts       int64   `json:"total_products"`
	LowStockItems       int64   `json:"low_stock_items"`
	LowStockThreshold   int     `json:"low_stock_threshold"`
	PendingRequests     int64   `json:"pending_requests"`
	CompletedRequests   int64   `json:"completed_requests"`
	InventoryValue      float64 `json:"inventory_value"`
	InventoryValueLabel string  `json:"inventory_value_display"`
}

func count(ctx context.Context, name string, scope func(*gorm.DB) *gorm.DB, model any) (int64, error) {
	res := query.Run(ctx, name, func(ctx context.Context) (int64, error) {
		var n int64
		err := scope(database.DB.WithContext(ctx).Model(model)).Count(&n).Error
		return n, err
	})
	if !res.OK() {
		return 0, res.Err
	}
	return res.Data, nil
}

// GET /api/dashboard/stats
func StatsHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var out StatsResponse
		out.LowStockThreshold = cfg.LowStockThreshold

		all := func(db *gorm.DB) *gorm.DB { return db }
		g, ctx := errgroup.WithContext(c.UserContext())
		g.Go(func() (err error) {
			out.TotalProducts, err = count(ctx, "dashboard.total_products", all, &models.InventoryItem{})
			return err
		})
		g.Go(func() (err error) {
			out.LowStockItems, err = count(ctx, "dashboard.low_stock", func(db *gorm.DB) *gorm.DB {
				return db.Where("quantity < ?", cfg.LowStockThreshold)
			}, &models.InventoryItem{})
			return err
		})
		g.Go(func() (err error) {
			out.PendingRequests, err = count(ctx, "dashboard.pending_requests", func(db *gorm.DB) *gorm.DB {
				return db.Where("status = ?", models.PurchasePending)
			}, &models.PurchaseRequest{})
			return err
		})
		g.Go(func() (err error) {
			out.CompletedRequests, err = count(ctx, "dashboard.completed_requests", func(db *gorm.DB) *gorm.DB {
				return db.Where("status = ?", models.PurchaseCompleted)
			}, &models.PurchaseRequest{})
			return err
		})
		g.Go(func() error {
			res := query.Run(ctx, "dashboard.inventory_value", func(ctx context.Context) (float64, error) {
				var total float64
				err := database.DB.WithContext(ctx).Model(&models.InventoryItem{}).
					Select("COALESCE(SUM(quantity * unit_price), 0)").Scan(&total).Error
				return total, err
			})
			if !res.OK() {
				return res.Err
			}
			out.InventoryValue = res.Data
			return nil
		})

		if err := g.Wait(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "대시보드 통계를 불러오는 데 실패했습니다.")
		}
		out.InventoryValueLabel = listview.Won(out.InventoryValue)
		return c.JSON(out)
	}
}
