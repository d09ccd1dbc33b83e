package shipping

import (
	"context"
	"errors"
	"fmt"

	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/config"
	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"
	"erp-backend/internal/records"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PlanResponse struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Destination  string         `json:"destination"`
	Quantity     int            `json:"quantity"`
	Priority     string         `json:"priority"`
	ShippingDate string         `json:"shipping_date"`
	Status       string         `json:"status"`
	StatusBadge  listview.Badge `json:"status_badge"`
	ItemsCount   int64          `json:"items_count"`
	CreatedBy    *uint          `json:"created_by"`
	CreatorName  string         `json:"creator_name"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

type AddItemRequest struct {
	InventoryID uint           `json:"inventory_id"`
	Quantity    records.Number `json:"quantity"`
}

type ItemResponse struct {
	ID             uint   `json:"id"`
	ShippingPlanID uint   `json:"shipping_plan_id"`
	InventoryID    uint   `json:"inventory_id"`
	InventoryName  string `json:"inventory_name"`
	Quantity       int    `json:"quantity"`
	CreatedAt      string `json:"created_at"`
}

func toResponse(p models.ShippingPlan, items int64) PlanResponse {
	return PlanResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Destination:  p.Destination,
		Quantity:     p.Quantity,
		Priority:     p.Priority,
		ShippingDate: listview.FormatDate(p.ShippingDate),
		Status:       p.Status,
		StatusBadge:  listview.ShippingStatus.For(p.Status),
		ItemsCount:   items,
		CreatedBy:    p.CreatedBy,
		CreatorName:  listview.CreatorName(p.Creator),
		CreatedAt:    listview.FormatDateTime(p.CreatedAt),
		UpdatedAt:    listview.FormatDateTime(p.UpdatedAt),
	}
}

func planText(p models.ShippingPlan) []string {
	return []string{p.Title, p.Description, p.Destination}
}

func planStatus(p models.ShippingPlan) string { return p.Status }

func countItems(ctx context.Context, planID uint) (int64, error) {
	var n int64
	err := database.DB.WithContext(ctx).Model(&models.ShippingPlanItem{}).
		Where("shipping_plan_id = ?", planID).Count(&n).Error
	return n, err
}

// GET /api/shipping-plans?search=&status=
func ListHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.RunList(c.UserContext(), "shipping.list", func(ctx context.Context) ([]models.ShippingPlan, error) {
			var rows []models.ShippingPlan
			err := database.DB.WithContext(ctx).Preload("Creator").Order("created_at desc").Find(&rows).Error
			return rows, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "배송 계획 목록을 불러오는 데 실패했습니다.")
		}
		rows := listview.Filter(res.Data, c.Query("search"), planText, c.Query("status"), planStatus)

		ids := make([]uint, 0, len(rows))
		for _, p := range rows {
			ids = append(ids, p.ID)
		}
		counts, err := listview.Counts(c.UserContext(), ids, cfg.CountConcurrency, countItems)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "배송 계획 목록을 불러오는 데 실패했습니다.")
		}

		out := make([]PlanResponse, 0, len(rows))
		for _, p := range rows {
			out = append(out, toResponse(p, counts[p.ID]))
		}
		return c.JSON(out)
	}
}

// POST /api/shipping-plans
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.ShippingForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(reload(c, row.(*models.ShippingPlan)))
	}
}

// PUT /api/shipping-plans/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var form records.ShippingForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Update(id), "배송 계획을 찾을 수 없습니다.")
		if err != nil {
			return err
		}
		return c.JSON(reload(c, row.(*models.ShippingPlan)))
	}
}

func reload(c *fiber.Ctx, p *models.ShippingPlan) PlanResponse {
	ctx := c.UserContext()
	if p.CreatedBy != nil {
		var u models.User
		if err := database.DB.WithContext(ctx).First(&u, *p.CreatedBy).Error; err == nil {
			p.Creator = &u
		}
	}
	n, _ := countItems(ctx, p.ID)
	return toResponse(*p, n)
}

// POST /api/shipping-plans/:id/items
func AddItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		planID, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var body AddItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}
		if body.InventoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "품목을 선택해주세요.")
		}
		if body.Quantity.Int() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "수량은 1 이상이어야 합니다.")
		}
		if !body.Quantity.InIntRange() {
			return fiber.NewError(fiber.StatusBadRequest, "입력한 값이 허용 범위를 초과했습니다.")
		}

		s := auth.Current(c)
		var (
			entry models.ShippingPlanItem
			item  models.InventoryItem
		)
		err = database.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var plan models.ShippingPlan
			if err := tx.First(&plan, planID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "배송 계획을 찾을 수 없습니다.")
				}
				return err
			}
			if err := tx.First(&item, body.InventoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "재고 항목을 찾을 수 없습니다.")
				}
				return err
			}

			entry = models.ShippingPlanItem{
				ShippingPlanID: plan.ID,
				InventoryID:    item.ID,
				Quantity:       body.Quantity.Int(),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				Actor:       s.Actor(),
				EntityType:  string(records.KindShipping),
				EntityID:    plan.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("배송 계획 #%d 품목 추가: %s %d", plan.ID, item.Name, entry.Quantity),
				After:       entry,
			})
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(ItemResponse{
			ID:             entry.ID,
			ShippingPlanID: entry.ShippingPlanID,
			InventoryID:    entry.InventoryID,
			InventoryName:  item.Name,
			Quantity:       entry.Quantity,
			CreatedAt:      listview.FormatDateTime(entry.CreatedAt),
		})
	}
}
