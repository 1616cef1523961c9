package database

import (
	"fmt"
	"strings"

	"shift-tracker/internal/auth"
	"shift-tracker/internal/config"
	"shift-tracker/internal/models"

	"gorm.io/gorm"
)

// SeedRootAdmin creates the distinguished root admin account if it does not
// exist yet. The configured password is accepted as-is (it never passes the
// strength policy); with force_root_password_change set the account has to
// replace it on first login before a session is issued.
func SeedRootAdmin(db *gorm.DB, cfg config.SecurityConfig) error {
	username := strings.ToLower(strings.TrimSpace(cfg.RootUsername))
	if username == "" {
		return fmt.Errorf("root username is empty")
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check root admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.Hash(cfg.RootPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	root := models.User{
		Username:           username,
		PasswordHash:       hash,
		Role:               auth.RoleAdmin,
		IsActive:           true,
		MustChangePassword: cfg.ForceRootPasswordChange,
		CreatedBy:          "system",
		Avatar:             "👤",
	}
	if err := db.Create(&root).Error; err != nil {
		return fmt.Errorf("create root admin: %w", err)
	}
	return nil
}
