package models

import "time"

// Bilinen roller. Role alanı serbest metindir, bunlar dışındaki değerler de
// saklanır ve olduğu gibi gösterilir.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleUser    = "user"
)

type User struct {
	ID                    uint   `gorm:"primaryKey"`
	Email                 string `gorm:"size:100;uniqueIndex;not null"`
	Username              string `gorm:"size:50;uniqueIndex;not null"`
	Nickname              string `gorm:"size:50"`
	FullName              string `gorm:"size:100"`
	FirstName             string `gorm:"size:50"`
	LastName              string `gorm:"size:50"`
	PasswordHash          string `gorm:"size:255;not null" json:"-"`
	Role                  string `gorm:"size:20;not null;default:user"`
	MarketingConsent      bool   `gorm:"not null;default:false"`
	PasswordResetRequired bool   `gorm:"not null;default:false"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
