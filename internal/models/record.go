package models

import "time"

// Record is a single work shift logged by a user. Date and times are kept
// as the client-facing strings ("2006-01-02", "15:04"); TotalHours is
// client-computed and validated to be non-negative on write.
type Record struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     uint    `gorm:"index;not null"`
	Date       string  `gorm:"size:10;index;not null"`
	StartTime  string  `gorm:"size:5;not null"`
	EndTime    string  `gorm:"size:5;not null"`
	TotalHours float64 `gorm:"not null"`
	Zone       string  `gorm:"size:64;not null"`
	Notes      string  `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
