// Package audit owns the two append-only accountability streams: access
// events (login/logout/failed login) and modification events (admin
// overrides of another user's records). Nothing in the application updates
// or deletes a row once written.
package audit

import (
	"encoding/json"
	"fmt"

	"shift-tracker/internal/models"

	"gorm.io/gorm"
)

const defaultPageSize = 50

// Logger appends to and queries the audit streams.
type Logger struct {
	DB *gorm.DB
}

func NewLogger(db *gorm.DB) *Logger {
	return &Logger{DB: db}
}

// RecordAccess appends an access event. Callers on the login/logout paths
// treat a failure here as non-fatal.
func (l *Logger) RecordAccess(username, action, ipAddress, userAgent string) error {
	entry := models.AccessLog{
		Username:  username,
		Action:    action,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := l.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("record access event: %w", err)
	}
	return nil
}

// EditChanges builds the Changes payload for an edit entry.
func EditChanges(before, after any) (string, error) {
	return marshalChanges(map[string]any{"before": before, "after": after})
}

// DeleteChanges builds the Changes payload for a delete entry.
func DeleteChanges(deleted any) (string, error) {
	return marshalChanges(map[string]any{"deleted": deleted})
}

func marshalChanges(doc map[string]any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal changes: %w", err)
	}
	return string(b), nil
}

// RecordModification appends a modification event, using tx so callers can
// make the entry part of the same transaction as the mutation it describes.
func (l *Logger) RecordModification(tx *gorm.DB, entry *models.ModificationLog) error {
	if tx == nil {
		tx = l.DB
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("record modification event: %w", err)
	}
	return nil
}

// QueryAccess returns access events newest first, optionally filtered by
// username, plus the total matching count.
func (l *Logger) QueryAccess(username string, limit, offset int) ([]models.AccessLog, int64, error) {
	base := l.DB.Model(&models.AccessLog{})
	if username != "" {
		base = base.Where("username = ?", username)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count access events: %w", err)
	}

	var entries []models.AccessLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(pageSize(limit)).
		Offset(max(offset, 0)).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("query access events: %w", err)
	}
	return entries, total, nil
}

// QueryModifications returns modification events newest first, optionally
// filtered by the acting admin, plus the total matching count.
func (l *Logger) QueryModifications(adminUsername string, limit, offset int) ([]models.ModificationLog, int64, error) {
	base := l.DB.Model(&models.ModificationLog{})
	if adminUsername != "" {
		base = base.Where("admin_username = ?", adminUsername)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count modification events: %w", err)
	}

	var entries []models.ModificationLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(pageSize(limit)).
		Offset(max(offset, 0)).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("query modification events: %w", err)
	}
	return entries, total, nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultPageSize
	}
	return limit
}
