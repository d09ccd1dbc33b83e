package production

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
	ID             uint           `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Quantity       int            `json:"quantity"`
	Priority       string         `json:"priority"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	Status         string         `json:"status"`
	StatusBadge    listview.Badge `json:"status_badge"`
	MaterialsCount int64          `json:"materials_count"`
	CreatedBy      *uint          `json:"created_by"`
	CreatorName    string         `json:"creator_name"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

type AddMaterialRequest struct {
	InventoryID uint           `json:"inventory_id"`
	Quantity    records.Number `json:"quantity"`
}

type MaterialResponse struct {
	ID               uint   `json:"id"`
	ProductionPlanID uint   `json:"production_plan_id"`
	InventoryID      uint   `json:"inventory_id"`
	InventoryName    string `json:"inventory_name"`
	Quantity         int    `json:"quantity"`
	CreatedAt        string `json:"created_at"`
}

func toResponse(p models.ProductionPlan, materials int64) PlanResponse {
	return PlanResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Quantity:       p.Quantity,
		Priority:       p.Priority,
		StartDate:      listview.FormatDate(p.StartDate),
		EndDate:        listview.FormatDate(p.EndDate),
		Status:         p.Status,
		StatusBadge:    listview.ProductionStatus.For(p.Status),
		MaterialsCount: materials,
		CreatedBy:      p.CreatedBy,
		CreatorName:    listview.CreatorName(p.Creator),
		CreatedAt:      listview.FormatDateTime(p.CreatedAt),
		UpdatedAt:      listview.FormatDateTime(p.UpdatedAt),
	}
}

func planText(p models.ProductionPlan) []string { return []string{p.Title, p.Description} }

func planStatus(p models.ProductionPlan) string { return p.Status }

func countMaterials(ctx context.Context, planID uint) (int64, error) {
	var n int64
	err := database.DB.WithContext(ctx).Model(&models.ProductionPlanMaterial{}).
		Where("production_plan_id = ?", planID).Count(&n).Error
	return n, err
}

// GET /api/production-plans?search=&status=
func ListHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.RunList(c.UserContext(), "production.list", func(ctx context.Context) ([]models.ProductionPlan, error) {
			var rows []models.ProductionPlan
			err := database.DB.WithContext(ctx).Preload("Creator").Order("created_at desc").Find(&rows).Error
			return rows, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "생산 계획 목록을 불러오는 데 실패했습니다.")
		}
		rows := listview.Filter(res.Data, c.Query("search"), planText, c.Query("status"), planStatus)

		ids := make([]uint, 0, len(rows))
		for _, p := range rows {
			ids = append(ids, p.ID)
		}
		counts, err := listview.Counts(c.UserContext(), ids, cfg.CountConcurrency, countMaterials)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "생산 계획 목록을 불러오는 데 실패했습니다.")
		}

		out := make([]PlanResponse, 0, len(rows))
		for _, p := range rows {
			out = append(out, toResponse(p, counts[p.ID]))
		}
		return c.JSON(out)
	}
}

// POST /api/production-plans
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.ProductionForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(reload(c, row.(*models.ProductionPlan)))
	}
}

// PUT /api/production-plans/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var form records.ProductionForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Update(id), "생산 계획을 찾을 수 없습니다.")
		if err != nil {
			return err
		}
		return c.JSON(reload(c, row.(*models.ProductionPlan)))
	}
}

func reload(c *fiber.Ctx, p *models.ProductionPlan) PlanResponse {
	ctx := c.UserContext()
	if p.CreatedBy != nil {
		var u models.User
		if err := database.DB.WithContext(ctx).First(&u, *p.CreatedBy).Error; err == nil {
			p.Creator = &u
		}
	}
	n, _ := countMaterials(ctx, p.ID)
	return toResponse(*p, n)
}

// POST /api/production-plans/:id/materials
func AddMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		planID, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var body AddMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다.")
		}
		if body.InventoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "자재를 선택해주세요.")
		}
		if body.Quantity.Int() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "수량은 1 이상이어야 합니다.")
		}
		if !body.Quantity.InIntRange() {
			return fiber.NewError(fiber.StatusBadRequest, "입력한 값이 허용 범위를 초과했습니다.")
		}

		s := auth.Current(c)
		var (
			material models.ProductionPlanMaterial
			item     models.InventoryItem
		)
		err = database.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var plan models.ProductionPlan
			if err := tx.First(&plan, planID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "생산 계획을 찾을 수 없습니다.")
				}
				return err
			}
			if err := tx.First(&item, body.InventoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "재고 항목을 찾을 수 없습니다.")
				}
				return err
			}

			material = models.ProductionPlanMaterial{
				ProductionPlanID: plan.ID,
				InventoryID:      item.ID,
				Quantity:         body.Quantity.Int(),
			}
			if err := tx.Create(&material).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				Actor:       s.Actor(),
				EntityType:  string(records.KindProduction),
				EntityID:    plan.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("생산 계획 #%d 자재 추가: %s %d", plan.ID, item.Name, material.Quantity),
				After:       material,
			})
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(MaterialResponse{
			ID:               material.ID,
			ProductionPlanID: material.ProductionPlanID,
			InventoryID:      material.InventoryID,
			InventoryName:    item.Name,
			Quantity:         material.Quantity,
			CreatedAt:        listview.FormatDateTime(material.CreatedAt),
		})
	}
}
