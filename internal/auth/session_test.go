package auth

import (
	"testing"
	"time"

	"shift-tracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func sessionTestUser(t *testing.T, db *gorm.DB, username string, active bool) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         RoleUser,
		IsActive:     active,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return &user
}

func TestSessionAuthority_CreateResolve(t *testing.T) {
	db := sessionTestDB(t)
	authority := NewSessionAuthority(db, 24)
	user := sessionTestUser(t, db, "alice", true)

	token, err := authority.Create(user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if token == "" {
		t.Fatal("Create() returned empty token")
	}

	resolved, err := authority.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != user.ID || resolved.Username != "alice" {
		t.Errorf("Resolve() = user %d %q, want %d %q", resolved.ID, resolved.Username, user.ID, "alice")
	}
}

func TestSessionAuthority_UnknownToken(t *testing.T) {
	db := sessionTestDB(t)
	authority := NewSessionAuthority(db, 24)

	if _, err := authority.Resolve("no-such-token"); err != ErrUnauthenticated {
		t.Errorf("Resolve(unknown) error = %v, want ErrUnauthenticated", err)
	}
	if _, err := authority.Resolve(""); err != ErrUnauthenticated {
		t.Errorf("Resolve(\"\") error = %v, want ErrUnauthenticated", err)
	}
}

func TestSessionAuthority_Expired(t *testing.T) {
	db := sessionTestDB(t)
	authority := NewSessionAuthority(db, 24)
	user := sessionTestUser(t, db, "bob", true)

	token, err := authority.Create(user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// push the expiry into the past
	expired := time.Now().Add(-time.Minute)
	if err := db.Model(&models.Session{}).
		Where("id = ?", token).
		Update("expires_at", expired).Error; err != nil {
		t.Fatalf("expire session: %v", err)
	}

	if _, err := authority.Resolve(token); err != ErrUnauthenticated {
		t.Errorf("Resolve(expired) error = %v, want ErrUnauthenticated", err)
	}
}

func TestSessionAuthority_Destroy(t *testing.T) {
	db := sessionTestDB(t)
	authority := NewSessionAuthority(db, 24)
	user := sessionTestUser(t, db, "carol", true)

	token, err := authority.Create(user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := authority.Destroy(token); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	if _, err := authority.Resolve(token); err != ErrUnauthenticated {
		t.Errorf("Resolve(revoked) error = %v, want ErrUnauthenticated", err)
	}

	// destroying again (or destroying nothing) still succeeds
	if err := authority.Destroy(token); err != nil {
		t.Errorf("Destroy() second call error = %v, want nil", err)
	}
	if err := authority.Destroy(""); err != nil {
		t.Errorf("Destroy(\"\") error = %v, want nil", err)
	}
}

func TestSessionAuthority_BlockedOwner(t *testing.T) {
	db := sessionTestDB(t)
	authority := NewSessionAuthority(db, 24)
	user := sessionTestUser(t, db, "dave", true)

	token, err := authority.Create(user.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// block the account after login; the session must stop resolving
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("block user: %v", err)
	}

	if _, err := authority.Resolve(token); err != ErrUnauthenticated {
		t.Errorf("Resolve(blocked owner) error = %v, want ErrUnauthenticated", err)
	}
}
