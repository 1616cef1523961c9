package auth

import (
	"errors"
	"fmt"
	"time"

	"shift-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnauthenticated is returned by Resolve when the token is missing,
// unknown, expired, revoked, or belongs to a blocked account. Callers treat
// all of these the same: no principal.
var ErrUnauthenticated = errors.New("not authenticated")

// SessionAuthority issues and resolves opaque session tokens backed by the
// sessions table. Expiry is fixed from issue time.
type SessionAuthority struct {
	DB  *gorm.DB
	TTL time.Duration
}

func NewSessionAuthority(db *gorm.DB, ttlHours int) *SessionAuthority {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &SessionAuthority{
		DB:  db,
		TTL: time.Duration(ttlHours) * time.Hour,
	}
}

// Create issues a new session token for the user.
func (a *SessionAuthority) Create(userID uint) (string, error) {
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(a.TTL),
	}
	if err := a.DB.Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

// Resolve maps a token to its account. A session whose owner has been
// blocked since login resolves to nothing, so the policy layer never has to
// re-check isActive.
func (a *SessionAuthority) Resolve(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	var session models.Session
	if err := a.DB.First(&session, "id = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Revoked || time.Now().After(session.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := a.DB.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}

// Destroy revokes a token. Revoking an unknown or already-revoked token is
// not an error; logout must always succeed.
func (a *SessionAuthority) Destroy(token string) error {
	if token == "" {
		return nil
	}
	if err := a.DB.Model(&models.Session{}).
		Where("id = ?", token).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
