package models

import "time"

// Session stores user login sessions (for logout, invalidation, audit).
// The ID is the opaque token handed to the client; expiry is fixed from
// issue time.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // UUID
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
