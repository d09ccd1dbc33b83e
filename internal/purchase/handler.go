package purchase

import (
	"context"

	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"
	"erp-backend/internal/records"

	"github.com/gofiber/fiber/v2"
)

type RequestResponse struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Quantity     int            `json:"quantity"`
	UnitPrice    float64        `json:"unit_price"`
	TotalAmount  string         `json:"total_amount"`
	Category     string         `json:"category"`
	Priority     string         `json:"priority"`
	ExpectedDate string         `json:"expected_date"`
	Status       string         `json:"status"`
	StatusBadge  listview.Badge `json:"status_badge"`
	CreatedBy    *uint          `json:"created_by"`
	CreatorName  string         `json:"creator_name"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

func toResponse(p models.PurchaseRequest) RequestResponse {
	return RequestResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Quantity:     p.Quantity,
		UnitPrice:    p.UnitPrice,
		TotalAmount:  listview.Won(float64(p.Quantity) * p.UnitPrice),
		Category:     p.Category,
		Priority:     p.Priority,
		ExpectedDate: listview.FormatDate(p.ExpectedDate),
		Status:       p.Status,
		StatusBadge:  listview.PurchaseStatus.For(p.Status),
		CreatedBy:    p.CreatedBy,
		CreatorName:  listview.CreatorName(p.Creator),
		CreatedAt:    listview.FormatDateTime(p.CreatedAt),
		UpdatedAt:    listview.FormatDateTime(p.UpdatedAt),
	}
}

func requestText(p models.PurchaseRequest) []string {
	return []string{p.Title, p.Description, p.Category}
}

func requestStatus(p models.PurchaseRequest) string { return p.Status }

// GET /api/purchase-requests?search=&status=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.RunList(c.UserContext(), "purchase.list", func(ctx context.Context) ([]models.PurchaseRequest, error) {
			var rows []models.PurchaseRequest
			err := database.DB.WithContext(ctx).Preload("Creator").Order("created_at desc").Find(&rows).Error
			return rows, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, "구매 요청 목록을 불러오는 데 실패했습니다.")
		}

		rows := listview.Filter(res.Data, c.Query("search"), requestText, c.Query("status"), requestStatus)
		out := make([]RequestResponse, 0, len(rows))
		for _, p := range rows {
			out = append(out, toResponse(p))
		}
		return c.JSON(out)
	}
}

// POST /api/purchase-requests
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.PurchaseForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(reload(c, row.(*models.PurchaseRequest)))
	}
}

// PUT /api/purchase-requests/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var form records.PurchaseForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Update(id), "구매 요청을 찾을 수 없습니다.")
		if err != nil {
			return err
		}
		return c.JSON(reload(c, row.(*models.PurchaseRequest)))
	}
}

// reload fills in the creator for the response. The write already happened,
// so a failure here only costs the display name.
func reload(c *fiber.Ctx, p *models.PurchaseRequest) RequestResponse {
	if p.CreatedBy != nil {
		var u models.User
		if err := database.DB.WithContext(c.UserContext()).First(&u, *p.CreatedBy).Error; err == nil {
			p.Creator = &u
		}
	}
	return toResponse(*p)
}
