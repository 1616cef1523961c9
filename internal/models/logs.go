package models

import "time"

// Access log actions.
const (
	AccessLogin       = "login"
	AccessLogout      = "logout"
	AccessFailedLogin = "failed_login"
)

// Modification log actions.
const (
	ModificationEdit   = "edit"
	ModificationDelete = "delete"
)

// AccessLog is one authentication event. Rows are append-only; the
// application exposes no update or delete path for them.
type AccessLog struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:64;index;not null"`
	Action    string `gorm:"size:16;not null"` // login / logout / failed_login
	IPAddress string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}

// ModificationLog records an admin edit or delete of another user's record.
// Changes holds a JSON document: {"before":..., "after":...} for edits,
// {"deleted":...} for deletions. Append-only, same as AccessLog.
type ModificationLog struct {
	ID             uint   `gorm:"primaryKey"`
	AdminUsername  string `gorm:"size:64;index;not null"`
	TargetUsername string `gorm:"size:64;not null"`
	RecordID       uint   `gorm:"not null"`
	Action         string `gorm:"size:16;not null"` // edit / delete
	Changes        string `gorm:"type:text"`
	Reason         string `gorm:"size:255"`
	CreatedAt      time.Time
}
