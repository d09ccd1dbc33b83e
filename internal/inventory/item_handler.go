package inventory

import (
	"context"

	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"
	"erp-backend/internal/records"

	"github.com/gofiber/fiber/v2"
)

type ItemResponse struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	Category          string  `json:"category"`
	TotalValue        float64 `json:"total_value"`
	QuantityDisplay   string  `json:"quantity_display"`
	UnitPriceDisplay  string  `json:"unit_price_display"`
	TotalValueDisplay string  `json:"total_value_display"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type ListResponse struct {
	Items      []ItemResponse `json:"items"`
	Categories []string       `json:"categories"`
	Total      int            `json:"total"`
}

func toItemResponse(it models.InventoryItem) ItemResponse {
	total := float64(it.Quantity) * it.UnitPrice
	return ItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		Description:       it.Description,
		Quantity:          it.Quantity,
		UnitPrice:         it.UnitPrice,
		Category:          it.Category,
		TotalValue:        total,
		QuantityDisplay:   listview.Count(it.Quantity),
		UnitPriceDisplay:  listview.Won(it.UnitPrice),
		TotalValueDisplay: listview.Won(total),
		CreatedAt:         listview.FormatDateTime(it.CreatedAt),
		UpdatedAt:         listview.FormatDateTime(it.UpdatedAt),
	}
}

func itemText(it models.InventoryItem) []string {
	return []string{it.Name, it.Description, it.Category}
}

func itemCategory(it models.InventoryItem) string { return it.Category }

// loadItems returns all rows and the ones matching ?search= and ?category=.
func loadItems(c *fiber.Ctx) (all, filtered []models.InventoryItem, err error) {
	res := query.RunList(c.UserContext(), "inventory.list", func(ctx context.Context) ([]models.InventoryItem, error) {
		var items []models.InventoryItem
		err := database.DB.WithContext(ctx).Order("name asc").Find(&items).Error
		return items, err
	})
	if !res.OK() {
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "재고 목록을 불러오는 데 실패했습니다.")
	}
	filtered = listview.Filter(res.Data, c.Query("search"), itemText, c.Query("category"), itemCategory)
	return res.Data, filtered, nil
}

// GET /api/inventory?search=&category=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, filtered, err := loadItems(c)
		if err != nil {
			return err
		}

		items := make([]ItemResponse, 0, len(filtered))
		for _, it := range filtered {
			items = append(items, toItemResponse(it))
		}
		return c.JSON(ListResponse{
			Items:      items,
			Categories: listview.Distinct(all, itemCategory),
			Total:      len(items),
		})
	}
}

// POST /api/inventory
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.InventoryForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toItemResponse(*row.(*models.InventoryItem)))
	}
}

// PUT /api/inventory/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := records.ParseID(c)
		if err != nil {
			return err
		}
		var form records.InventoryForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Update(id), "재고 항목을 찾을 수 없습니다.")
		if err != nil {
			return err
		}
		return c.JSON(toItemResponse(*row.(*models.InventoryItem)))
	}
}
