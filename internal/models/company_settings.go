package models

import "time"

// CompanySettingsID tek satırlık şirket ayarlarının sabit anahtarı
const CompanySettingsID uint = 1

type CompanySettings struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false"`
	CompanyName string `gorm:"size:100"`
	Address     string `gorm:"size:255"`
	Phone       string `gorm:"size:30"`
	Email       string `gorm:"size:100"`
	TaxID       string `gorm:"size:30"`
	Currency    string `gorm:"size:10;not null;default:KRW"`
	Timezone    string `gorm:"size:50;not null;default:Asia/Seoul"`
	DateFormat  string `gorm:"size:20;not null;default:YYYY-MM-DD"`
	UpdatedBy   *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
