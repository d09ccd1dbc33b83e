package records

import (
	"strings"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/models"
)

// Form is one record editor's payload. Every kind carries only its own
// fields; Build turns a validated form into the model row to write.
type Form interface {
	Kind() Kind
	Validate() error
	Build(actor audit.Actor, now time.Time) any
}

// updateOmitter lets a form keep columns out of a full-record update.
type updateOmitter interface {
	OmitOnUpdate() []string
}

func required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

func nonNegative(field string, n Number, message string) error {
	if n < 0 {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

// withinInt rejects values an integer column cannot hold.
func withinInt(field string, n Number) error {
	if !n.InIntRange() {
		return &ValidationError{Field: field, Message: msgTooLarge}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

const (
	msgQuantity  = "수량은 0 이상이어야 합니다."
	msgUnitPrice = "단가는 0 이상이어야 합니다."
	msgTitle     = "제목은 필수 입력 사항입니다."
	msgTooLarge  = "입력한 값이 허용 범위를 초과했습니다."
)

type InventoryForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	UnitPrice   Number `json:"unit_price"`
	Category    string `json:"category"`
}

func (InventoryForm) Kind() Kind { return KindInventory }

func (f InventoryForm) Validate() error {
	return firstError(
		required("name", f.Name, "자재명은 필수 입력 사항입니다."),
		nonNegative("quantity", f.Quantity, msgQuantity),
		withinInt("quantity", f.Quantity),
		nonNegative("unit_price", f.UnitPrice, msgUnitPrice),
	)
}

func (f InventoryForm) Build(_ audit.Actor, now time.Time) any {
	return &models.InventoryItem{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Quantity:    f.Quantity.Int(),
		UnitPrice:   f.UnitPrice.Float(),
		Category:    strings.TrimSpace(f.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type PurchaseForm struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Quantity     Number `json:"quantity"`
	UnitPrice    Number `json:"unit_price"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	ExpectedDate Date   `json:"expected_date"`
	Status       string `json:"status"`
}

func (PurchaseForm) Kind() Kind { return KindPurchase }

func (f PurchaseForm) Validate() error {
	return firstError(
		required("title", f.Title, msgTitle),
		nonNegative("quantity", f.Quantity, msgQuantity),
		withinInt("quantity", f.Quantity),
		nonNegative("unit_price", f.UnitPrice, msgUnitPrice),
	)
}

func (f PurchaseForm) Build(actor audit.Actor, now time.Time) any {
	return &models.PurchaseRequest{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		Quantity:     f.Quantity.Int(),
		UnitPrice:    f.UnitPrice.Float(),
		Category:     strings.TrimSpace(f.Category),
		Priority:     strings.TrimSpace(f.Priority),
		ExpectedDate: f.ExpectedDate.Time(),
		Status:       orDefault(f.Status, models.PurchasePending),
		CreatedBy:    actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (PurchaseForm) OmitOnUpdate() []string { return []string{"created_by"} }

type ProductionForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	Priority    string `json:"priority"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	Status      string `json:"status"`
}

func (ProductionForm) Kind() Kind { return KindProduction }

func (f ProductionForm) Validate() error {
	if err := firstError(
		required("title", f.Title, msgTitle),
		nonNegative("quantity", f.Quantity, msgQuantity),
		withinInt("quantity", f.Quantity),
	); err != nil {
		return err
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Time().Before(*f.StartDate.Time()) {
		return &ValidationError{Field: "end_date", Message: "종료일은 시작일과 같거나 이후여야 합니다."}
	}
	return nil
}

func (f ProductionForm) Build(actor audit.Actor, now time.Time) any {
	return &models.ProductionPlan{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Quantity:    f.Quantity.Int(),
		Priority:    strings.TrimSpace(f.Priority),
		StartDate:   f.StartDate.Time(),
		EndDate:     f.EndDate.Time(),
		Status:      orDefault(f.Status, models.ProductionPlanned),
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (ProductionForm) OmitOnUpdate() []string { return []string{"created_by"} }

type ShippingForm struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Destination  string `json:"destination"`
	Quantity     Number `json:"quantity"`
	Priority     string `json:"priority"`
	ShippingDate Date   `json:"shipping_date"`
	Status       string `json:"status"`
}

func (ShippingForm) Kind() Kind { return KindShipping }

func (f ShippingForm) Validate() error {
	return firstError(
		required("title", f.Title, msgTitle),
		required("destination", f.Destination, "배송지는 필수 입력 사항입니다."),
		nonNegative("quantity", f.Quantity, msgQuantity),
		withinInt("quantity", f.Quantity),
	)
}

func (f ShippingForm) Build(actor audit.Actor, now time.Time) any {
	return &models.ShippingPlan{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		Destination:  strings.TrimSpace(f.Destination),
		Quantity:     f.Quantity.Int(),
		Priority:     strings.TrimSpace(f.Priority),
		ShippingDate: f.ShippingDate.Time(),
		Status:       orDefault(f.Status, models.ShippingPlanned),
		CreatedBy:    actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (ShippingForm) OmitOnUpdate() []string { return []string{"created_by"} }

// UserForm is the admin user editor. The caller hashes the password and sets
// it with SetPasswordHash; an update without one keeps the stored hash.
type UserForm struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Password string `json:"password"`

	passwordHash string
}

func (UserForm) Kind() Kind { return KindUser }

func (f UserForm) Validate() error {
	return firstError(
		required("email", f.Email, "이메일은 필수 입력 사항입니다."),
		required("username", f.Username, "아이디는 필수 입력 사항입니다."),
	)
}

func (f *UserForm) SetPasswordHash(hash string) { f.passwordHash = hash }

func (f UserForm) Build(_ audit.Actor, now time.Time) any {
	username := strings.TrimSpace(f.Username)
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(f.Email)),
		Username:     username,
		FullName:     strings.TrimSpace(f.FullName),
		Nickname:     orDefault(f.Nickname, username),
		Role:         orDefault(f.Role, models.RoleUser),
		PasswordHash: f.passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (f UserForm) OmitOnUpdate() []string {
	cols := []string{"first_name", "last_name", "marketing_consent", "password_reset_required"}
	if f.passwordHash == "" {
		cols = append(cols, "password_hash")
	}
	return cols
}

type SiteInfoForm struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
	Currency    string `json:"currency"`
	Timezone    string `json:"timezone"`
	DateFormat  string `json:"date_format"`
}

func (SiteInfoForm) Kind() Kind { return KindSiteInfo }

func (f SiteInfoForm) Validate() error {
	return firstError(
		required("company_name", f.CompanyName, "회사명은 필수 입력 사항입니다."),
		required("address", f.Address, "주소는 필수 입력 사항입니다."),
		required("phone", f.Phone, "전화번호는 필수 입력 사항입니다."),
		required("email", f.Email, "이메일은 필수 입력 사항입니다."),
		required("tax_id", f.TaxID, "사업자등록번호는 필수 입력 사항입니다."),
	)
}

func (f SiteInfoForm) Build(actor audit.Actor, now time.Time) any {
	return &models.CompanySettings{
		ID:          models.CompanySettingsID,
		CompanyName: strings.TrimSpace(f.CompanyName),
		Address:     strings.TrimSpace(f.Address),
		Phone:       strings.TrimSpace(f.Phone),
		Email:       strings.TrimSpace(f.Email),
		TaxID:       strings.TrimSpace(f.TaxID),
		Currency:    orDefault(f.Currency, "KRW"),
		Timezone:    orDefault(f.Timezone, "Asia/Seoul"),
		DateFormat:  orDefault(f.DateFormat, "YYYY-MM-DD"),
		UpdatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type CategoryForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (CategoryForm) Kind() Kind { return KindCategory }

func (f CategoryForm) Validate() error {
	return required("name", f.Name, "카테고리명은 필수 입력 사항입니다.")
}

func (f CategoryForm) Build(_ audit.Actor, now time.Time) any {
	return &models.Category{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type EmployeeForm struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func (EmployeeForm) Kind() Kind { return KindEmployee }

func (f EmployeeForm) Validate() error {
	return firstError(
		required("name", f.Name, "이름은 필수 입력 사항입니다."),
		required("position", f.Position, "직책은 필수 입력 사항입니다."),
		required("department", f.Department, "부서는 필수 입력 사항입니다."),
		required("phone", f.Phone, "전화번호는 필수 입력 사항입니다."),
		required("email", f.Email, "이메일은 필수 입력 사항입니다."),
	)
}

func (f EmployeeForm) Build(_ audit.Actor, now time.Time) any {
	return &models.Employee{
		Name:       strings.TrimSpace(f.Name),
		Position:   strings.TrimSpace(f.Position),
		Department: strings.TrimSpace(f.Department),
		Phone:      strings.TrimSpace(f.Phone),
		Email:      strings.TrimSpace(f.Email),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type PriorityForm struct {
	Name  string `json:"name"`
	Value Number `json:"priority_value"`
	Color string `json:"color"`
}

func (PriorityForm) Kind() Kind { return KindPriority }

func (f PriorityForm) Validate() error {
	return firstError(
		required("name", f.Name, "우선순위명은 필수 입력 사항입니다."),
		withinInt("priority_value", f.Value),
	)
}

func (f PriorityForm) Build(_ audit.Actor, now time.Time) any {
	return &models.Priority{
		Name:      strings.TrimSpace(f.Name),
		Value:     f.Value.Int(),
		Color:     strings.TrimSpace(f.Color),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type StatusForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (StatusForm) Kind() Kind { return KindStatus }

func (f StatusForm) Validate() error {
	return firstError(
		required("name", f.Name, "상태명은 필수 입력 사항입니다."),
		required("color", f.Color, "색상은 필수 입력 사항입니다."),
	)
}

func (f StatusForm) Build(_ audit.Actor, now time.Time) any {
	return &models.Status{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Color:       strings.TrimSpace(f.Color),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewForm returns an empty form for kind, ready to be decoded into.
func NewForm(kind Kind) (Form, error) {
	switch kind {
	case KindInventory:
		return &InventoryForm{}, nil
	case KindPurchase:
		return &PurchaseForm{}, nil
	case KindProduction:
		return &ProductionForm{}, nil
	case KindShipping:
		return &ShippingForm{}, nil
	case KindUser:
		return &UserForm{}, nil
	case KindSiteInfo:
		return &SiteInfoForm{}, nil
	case KindCategory:
		return &CategoryForm{}, nil
	case KindEmployee:
		return &EmployeeForm{}, nil
	case KindPriority:
		return &PriorityForm{}, nil
	case KindStatus:
		return &StatusForm{}, nil
	}
	_, err := ParseKind(string(kind))
	return nil, err
}
