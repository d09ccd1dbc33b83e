package models

import "time"

type InventoryItem struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:100;not null;index"`
	Description string  `gorm:"size:500"`
	Quantity    int     `gorm:"not null;default:0"`
	UnitPrice   float64 `gorm:"not null;default:0"`
	Category    string  `gorm:"size:50;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (InventoryItem) TableName() string { return "inventory" }
