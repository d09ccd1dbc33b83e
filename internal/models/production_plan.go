package models

import "time"

const (
	ProductionPlanned    = "planned"
	ProductionInProgress = "in_progress"
	ProductionCompleted  = "completed"
	ProductionCancelled  = "cancelled"
)

type ProductionPlan struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"size:1000"`
	Quantity    int        `gorm:"not null;default:0"`
	Priority    string     `gorm:"size:20"`
	StartDate   *time.Time `gorm:"index"`
	EndDate     *time.Time
	Status      string `gorm:"size:20;not null;index"`
	CreatedBy   *uint  `gorm:"index"`
	Creator     *User  `gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Materials []ProductionPlanMaterial `gorm:"foreignKey:ProductionPlanID;constraint:OnDelete:CASCADE"`
}

// ProductionPlanMaterial: plan için ayrılan stok kalemi
type ProductionPlanMaterial struct {
	ID               uint          `gorm:"primaryKey"`
	ProductionPlanID uint          `gorm:"index;not null"`
	InventoryID      uint          `gorm:"index;not null"`
	Inventory        InventoryItem `gorm:"foreignKey:InventoryID"`
	Quantity         int           `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
