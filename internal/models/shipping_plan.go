package models

import "time"

const (
	ShippingPlanned   = "planned"
	ShippingInTransit = "in_transit"
	ShippingDelivered = "delivered"
	ShippingDelayed   = "delayed"
	ShippingCancelled = "cancelled"
)

// ShippingPlan: birden fazla stok kalemi içerebilen sevkiyat planı
type ShippingPlan struct {
	ID           uint       `gorm:"primaryKey"`
	Title        string     `gorm:"size:200;not null"`
	Description  string     `gorm:"size:1000"`
	Destination  string     `gorm:"size:255;not null"`
	Quantity     int        `gorm:"not null;default:0"`
	Priority     string     `gorm:"size:20"`
	ShippingDate *time.Time `gorm:"index"`
	Status       string     `gorm:"size:20;not null;index"`
	CreatedBy    *uint      `gorm:"index"`
	Creator      *User      `gorm:"foreignKey:CreatedBy"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []ShippingPlanItem `gorm:"foreignKey:ShippingPlanID;constraint:OnDelete:CASCADE"`
}

type ShippingPlanItem struct {
	ID             uint          `gorm:"primaryKey"`
	ShippingPlanID uint          `gorm:"index;not null"`
	InventoryID    uint          `gorm:"index;not null"`
	Inventory      InventoryItem `gorm:"foreignKey:InventoryID"`
	Quantity       int           `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
