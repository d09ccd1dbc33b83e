package models

import "time"

// Bilinen satın alma talebi durumları
const (
	PurchasePending   = "pending"
	PurchaseApproved  = "approved"
	PurchaseRejected  = "rejected"
	PurchaseCompleted = "completed"
)

type PurchaseRequest struct {
	ID           uint    `gorm:"primaryKey"`
	Title        string  `gorm:"size:200;not null"`
	Description  string  `gorm:"size:1000"`
	Quantity     int     `gorm:"not null;default:0"`
	UnitPrice    float64 `gorm:"not null;default:0"`
	Category     string  `gorm:"size:50"`
	Priority     string  `gorm:"size:20"`
	ExpectedDate *time.Time
	Status       string `gorm:"size:20;not null;index"`
	CreatedBy    *uint  `gorm:"index"`
	Creator      *User  `gorm:"foreignKey:CreatedBy"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
