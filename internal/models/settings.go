package models

import "time"

// Ayarlar sayfasının alt kayıtları. Aralarında ilişki zorlanmaz.

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Employee struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null"`
	Position   string `gorm:"size:50"`
	Department string `gorm:"size:50"`
	Phone      string `gorm:"size:30"`
	Email      string `gorm:"size:100"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Priority struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null"`
	Value     int    `gorm:"not null;default:0"`
	Color     string `gorm:"size:20"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Status struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"size:255"`
	Color       string `gorm:"size:20"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
