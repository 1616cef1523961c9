package models

import "time"

// Message is one direct message between two usernames (both lowercase).
// Messages are append-only: there is no edit or delete operation anywhere.
// Conversations and unread counts are derived from this table on read.
type Message struct {
	ID        uint   `gorm:"primaryKey"`
	FromUser  string `gorm:"size:64;not null;index:idx_messages_pair,priority:1"`
	ToUser    string `gorm:"size:64;not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1"`
	Body      string `gorm:"size:1000;not null"`
	IsRead    bool   `gorm:"not null;default:false;index:idx_messages_unread,priority:2"`
	CreatedAt time.Time
}
