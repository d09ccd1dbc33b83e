package inventory

import (
	"fmt"
	"time"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "재고"

var exportHeaders = []string{"ID", "자재명", "카테고리", "설명", "수량", "단가", "금액", "수정일"}

// buildWorkbook writes one row per item under a header row.
func buildWorkbook(items []models.InventoryItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, it := range items {
		values := []any{
			it.ID, it.Name, it.Category, it.Description,
			it.Quantity, it.UnitPrice, float64(it.Quantity) * it.UnitPrice,
			it.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}
	return f, nil
}

// GET /api/inventory/export?search=&category=
func ExportItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, filtered, err := loadItems(c)
		if err != nil {
			return err
		}

		f, err := buildWorkbook(filtered)
		if err != nil {
			zap.L().Error("excel oluşturulamadı", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "엑셀 파일을 만들지 못했습니다.")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "엑셀 파일을 만들지 못했습니다.")
		}

		filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
