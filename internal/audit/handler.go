package audit

import (
	"context"
	"strconv"

	"erp-backend/internal/database"
	"erp-backend/internal/models"
	"erp-backend/internal/query"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      *uint              `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

// GET /api/audit-logs?entity_type=inventory&entity_id=1&user_id=2&limit=100
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType := c.Query("entity_type")
		entityID, _ := strconv.ParseUint(c.Query("entity_id"), 10, 64)
		userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		res := query.RunList(c.UserContext(), "audit_logs", func(ctx context.Context) ([]models.AuditLog, error) {
			dbq := database.DB.WithContext(ctx).Model(&models.AuditLog{})
			if entityType != "" {
				dbq = dbq.Where("entity_type = ?", entityType)
			}
			if entityID > 0 {
				dbq = dbq.Where("entity_id = ?", entityID)
			}
			if userID > 0 {
				dbq = dbq.Where("user_id = ?", userID)
			}
			var logs []models.AuditLog
			err := dbq.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
			return logs, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "변경 이력을 불러오는 데 실패했습니다.")
		}

		out := make([]AuditLogResponse, 0, len(res.Data))
		for _, l := range res.Data {
			out = append(out, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(out)
	}
}
