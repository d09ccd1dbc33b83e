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

type CompanyResponse struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
	Currency    string `json:"currency"`
	Timezone    string `json:"timezone"`
	DateFormat  string `json:"date_format"`
	UpdatedBy   *uint  `json:"updated_by"`
	UpdatedAt   string `json:"updated_at"`
}

func toCompanyResponse(s models.CompanySettings) CompanyResponse {
	return CompanyResponse{
		CompanyName: s.CompanyName,
		Address:     s.Address,
		Phone:       s.Phone,
		Email:       s.Email,
		TaxID:       s.TaxID,
		Currency:    s.Currency,
		Timezone:    s.Timezone,
		DateFormat:  s.DateFormat,
		UpdatedBy:   s.UpdatedBy,
		UpdatedAt:   listview.FormatDateTime(s.UpdatedAt),
	}
}

// GET /api/settings/company
func GetCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := query.Run(c.UserContext(), "settings.company", func(ctx context.Context) (*models.CompanySettings, error) {
			var s models.CompanySettings
			if err := database.DB.WithContext(ctx).First(&s, models.CompanySettingsID).Error; err != nil {
				return nil, err
			}
			return &s, nil
		})
		if !res.OK() {
			if res.Err.Code == query.CodeNotFound {
				return fiber.NewError(fiber.StatusNotFound, "회사 정보가 등록되지 않았습니다.")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "회사 정보를 불러오는 데 실패했습니다.")
		}
		return c.JSON(toCompanyResponse(*res.Data))
	}
}

// PUT /api/settings/company
// Tek satır olduğu için id yoktur, her kayıt 1 numaralı satırı yazar.
func UpdateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form records.SiteInfoForm
		if err := records.Decode(c, &form); err != nil {
			return err
		}
		row, err := records.SubmitRequest(c, form, records.Update(models.CompanySettingsID), "")
		if err != nil {
			return err
		}
		return c.JSON(toCompanyResponse(*row.(*models.CompanySettings)))
	}
}
