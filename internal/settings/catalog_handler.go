package settings

import (
	"context"

	"erp-backend/internal/database"
	"erp-backend/internal/listview"
	"erp-backend/internal/models"
	"erp-backend/internal/query"
	"erp-backend/internal/records"

	"github.com/gofiber/fiber/v2"
)

// Ayarlar sayfasındaki dört basit liste aynı akışı paylaşır: sıralı liste ve
// form üzerinden ekleme.

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type EmployeeResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	CreatedAt  string `json:"created_at"`
}

type PriorityResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Value     int    `json:"priority_value"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

type StatusResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	CreatedAt   string `json:"created_at"`
}

func toCategory(m models.Category) CategoryResponse {
	return CategoryResponse{ID: m.ID, Name: m.Name, Description: m.Description, CreatedAt: listview.FormatDateTime(m.CreatedAt)}
}

func toEmployee(m models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         m.ID,
		Name:       m.Name,
		Position:   m.Position,
		Department: m.Department,
		Phone:      m.Phone,
		Email:      m.Email,
		CreatedAt:  listview.FormatDateTime(m.CreatedAt),
	}
}

func toPriority(m models.Priority) PriorityResponse {
	return PriorityResponse{ID: m.ID, Name: m.Name, Value: m.Value, Color: m.Color, CreatedAt: listview.FormatDateTime(m.CreatedAt)}
}

func toStatus(m models.Status) StatusResponse {
	return StatusResponse{ID: m.ID, Name: m.Name, Description: m.Description, Color: m.Color, CreatedAt: listview.FormatDateTime(m.CreatedAt)}
}

func listHandler[M any, R any](name, order, failMsg string, convert func(M) R) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.RunList(c.UserContext(), name, func(ctx context.Context) ([]M, error) {
			var rows []M
			err := database.DB.WithContext(ctx).Order(order).Find(&rows).Error
			return rows, err
		})
		if !res.OK() {
			return fiber.NewError(fiber.StatusInternalServerError, failMsg)
		}
		out := make([]R, 0, len(res.Data))
		for _, r := range res.Data {
			out = append(out, convert(r))
		}
		return c.JSON(out)
	}
}

func createHandler[F any, M any, R any](convert func(M) R) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, ok := any(new(F)).(records.Form)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "지원하지 않는 양식입니다.")
		}
		if err := records.Decode(c, form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Create(), "")
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(convert(*row.(*M)))
	}
}

// GET /api/settings/categories
func ListCategoriesHandler() fiber.Handler {
	return listHandler("settings.categories", "name asc", "카테고리 목록을 불러오는 데 실패했습니다.", toCategory)
}

// POST /api/settings/categories
func CreateCategoryHandler() fiber.Handler {
	return createHandler[records.CategoryForm](toCategory)
}

// GET /api/settings/employees
func ListEmployeesHandler() fiber.Handler {
	return listHandler("settings.employees", "name asc", "직원 목록을 불러오는 데 실패했습니다.", toEmployee)
}

// POST /api/settings/employees
func CreateEmployeeHandler() fiber.Handler {
	return createHandler[records.EmployeeForm](toEmployee)
}

// GET /api/settings/priorities
func ListPrioritiesHandler() fiber.Handler {
	return listHandler("settings.priorities", "value desc, name asc", "우선순위 목록을 불러오는 데 실패했습니다.", toPriority)
}

// POST /api/settings/priorities
func CreatePriorityHandler() fiber.Handler {
	return createHandler[records.PriorityForm](toPriority)
}

// GET /api/settings/statuses
func ListStatusesHandler() fiber.Handler {
	return listHandler("settings.statuses", "name asc", "상태 목록을 불러오는 데 실패했습니다.", toStatus)
}

// POST /api/settings/statuses
func CreateStatusHandler() fiber.Handler {
	return createHandler[records.StatusForm](toStatus)
}
