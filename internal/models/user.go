package models

import "time"

// User represents an application account. Usernames are stored lowercase
// and never change after creation.
type User struct {
	ID                 uint       `gorm:"primaryKey"`
	Username           string     `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash       string     `gorm:"size:255;not null"`
	Role               string     `gorm:"size:16;not null;default:user"` // admin / supervisor / user
	IsActive           bool       `gorm:"not null;default:true"`
	MustChangePassword bool       `gorm:"not null;default:false"`
	CreatedBy          string     `gorm:"size:64;default:system"`
	LastLogin          *time.Time
	LoginCount         int    `gorm:"not null;default:0"`
	Phone              string `gorm:"size:32"`
	Email              string `gorm:"size:128"`
	Avatar             string `gorm:"size:64;default:👤"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
