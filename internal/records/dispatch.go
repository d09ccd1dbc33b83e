package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

const msgDuplicate = "이미 등록된 항목입니다."

// ValidationError is a form that failed its own checks. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Target selects the row a form writes. A zero ID creates a new row.
type Target struct {
	ID uint
}

func Create() Target { return Target{} }

func Update(id uint) Target { return Target{ID: id} }

func (t Target) IsCreate() bool { return t.ID == 0 }

var now = time.Now

// siteInfoColumns are rewritten on every company settings save.
var siteInfoColumns = []string{
	"company_name", "address", "phone", "email", "tax_id",
	"currency", "timezone", "date_format", "updated_by", "updated_at",
}

// Submit validates form and performs exactly one write to the table of its
// kind, plus the matching audit entry, in one transaction. The returned value
// is the stored row. Database errors are returned as they are.
func Submit(ctx context.Context, db *gorm.DB, actor audit.Actor, form Form, target Target) (any, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	row := form.Build(actor, now())
	kind := form.Kind()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			before any
			action = models.AuditActionCreate
		)

		switch {
		case kind == KindSiteInfo:
			existing := &models.CompanySettings{}
			res := tx.Limit(1).Find(existing, models.CompanySettingsID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				before = snapshot(existing)
				action = models.AuditActionUpdate
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(siteInfoColumns),
			}).Create(row).Error; err != nil {
				return err
			}
			if err := tx.First(row, models.CompanySettingsID).Error; err != nil {
				return err
			}

		case target.IsCreate():
			if err := tx.Create(row).Error; err != nil {
				return err
			}

		default:
			existing := reflect.New(reflect.TypeOf(row).Elem()).Interface()
			if err := tx.First(existing, target.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			before = snapshot(existing)
			action = models.AuditActionUpdate

			omit := []string{"id", "created_at"}
			if o, ok := form.(updateOmitter); ok {
				omit = append(omit, o.OmitOnUpdate()...)
			}
			setID(row, target.ID)
			if err := tx.Model(existing).Select("*").Omit(omit...).Updates(row).Error; err != nil {
				return err
			}
			// omit edilen kolonlar dahil güncel satırı geri oku
			if err := tx.First(row, target.ID).Error; err != nil {
				return err
			}
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  string(kind),
			EntityID:    rowID(row),
			Action:      action,
			Description: fmt.Sprintf("%s #%d %s", kind.Label(), rowID(row), actionLabel(action)),
			Before:      before,
			After:       row,
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// HTTPError maps a Submit error to the response the handlers return.
func HTTPError(err error, notFoundMsg string) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.NewError(fiber.StatusConflict, msgDuplicate)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// snapshot freezes a row before gorm writes back into it.
func snapshot(row any) json.RawMessage {
	b, err := json.Marshal(row)
	if err != nil {
		return nil
	}
	return b
}

func actionLabel(a models.AuditAction) string {
	if a == models.AuditActionUpdate {
		return "수정"
	}
	return "생성"
}

func rowID(row any) uint {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	f := v.FieldByName("ID")
	if !f.IsValid() {
		return 0
	}
	return uint(f.Uint())
}

func setID(row any, id uint) {
	f := reflect.ValueOf(row).Elem().FieldByName("ID")
	if f.IsValid() && f.CanSet() {
		f.SetUint(uint64(id))
	}
}
