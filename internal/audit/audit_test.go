package audit

import (
	"encoding/json"
	"testing"

	"shift-tracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func auditTestDB(t *testing.T) *gorm.DB {
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

	if err := db.AutoMigrate(&models.AccessLog{}, &models.ModificationLog{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestRecordAccess_AndQuery(t *testing.T) {
	db := auditTestDB(t)
	auditLogger := NewLogger(db)

	events := []struct {
		username string
		action   string
	}{
		{"alice", models.AccessLogin},
		{"bob", models.AccessFailedLogin},
		{"alice", models.AccessLogout},
	}
	for _, e := range events {
		if err := auditLogger.RecordAccess(e.username, e.action, "127.0.0.1", "test-agent"); err != nil {
			t.Fatalf("RecordAccess(%q, %q) error = %v", e.username, e.action, err)
		}
	}

	entries, total, err := auditLogger.QueryAccess("", 50, 0)
	if err != nil {
		t.Fatalf("QueryAccess() error = %v", err)
	}
	if total != 3 {
		t.Errorf("QueryAccess() total = %d, want 3", total)
	}
	if len(entries) != 3 {
		t.Fatalf("QueryAccess() returned %d entries, want 3", len(entries))
	}
	// newest first
	if entries[0].Action != models.AccessLogout || entries[2].Action != models.AccessLogin {
		t.Errorf("QueryAccess() order = [%s %s %s], want newest first",
			entries[0].Action, entries[1].Action, entries[2].Action)
	}
}

func TestQueryAccess_FilterAndPagination(t *testing.T) {
	db := auditTestDB(t)
	auditLogger := NewLogger(db)

	for i := 0; i < 5; i++ {
		if err := auditLogger.RecordAccess("alice", models.AccessLogin, "", ""); err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}
	if err := auditLogger.RecordAccess("bob", models.AccessLogin, "", ""); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}

	entries, total, err := auditLogger.QueryAccess("alice", 2, 0)
	if err != nil {
		t.Fatalf("QueryAccess() error = %v", err)
	}
	if total != 5 {
		t.Errorf("filtered total = %d, want 5", total)
	}
	if len(entries) != 2 {
		t.Errorf("limited page size = %d, want 2", len(entries))
	}

	entries, _, err = auditLogger.QueryAccess("alice", 2, 4)
	if err != nil {
		t.Fatalf("QueryAccess() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("last page size = %d, want 1", len(entries))
	}

	for i := range entries {
		if entries[i].Username != "alice" {
			t.Errorf("filtered entry username = %q, want alice", entries[i].Username)
		}
	}
}

func TestRecordModification_AndQuery(t *testing.T) {
	db := auditTestDB(t)
	auditLogger := NewLogger(db)

	changes, err := DeleteChanges(map[string]string{"date": "2026-01-15"})
	if err != nil {
		t.Fatalf("DeleteChanges() error = %v", err)
	}

	entry := models.ModificationLog{
		AdminUsername:  "admin",
		TargetUsername: "alice",
		RecordID:       42,
		Action:         models.ModificationDelete,
		Changes:        changes,
		Reason:         "dup",
	}
	if err := auditLogger.RecordModification(nil, &entry); err != nil {
		t.Fatalf("RecordModification() error = %v", err)
	}
	if entry.ID == 0 {
		t.Error("RecordModification() did not backfill entry ID")
	}

	entries, total, err := auditLogger.QueryModifications("admin", 50, 0)
	if err != nil {
		t.Fatalf("QueryModifications() error = %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("QueryModifications() = %d entries, total %d, want 1/1", len(entries), total)
	}

	got := entries[0]
	if got.TargetUsername != "alice" || got.Action != models.ModificationDelete || got.Reason != "dup" {
		t.Errorf("entry = {target %q, action %q, reason %q}, want {alice, delete, dup}",
			got.TargetUsername, got.Action, got.Reason)
	}

	var doc map[string]map[string]string
	if err := json.Unmarshal([]byte(got.Changes), &doc); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}
	if doc["deleted"]["date"] != "2026-01-15" {
		t.Errorf("deleted snapshot date = %q, want 2026-01-15", doc["deleted"]["date"])
	}

	entries, total, err = auditLogger.QueryModifications("nobody", 50, 0)
	if err != nil {
		t.Fatalf("QueryModifications() error = %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Errorf("QueryModifications(nobody) = %d entries, total %d, want 0/0", len(entries), total)
	}
}

func TestEditChanges_Shape(t *testing.T) {
	changes, err := EditChanges(map[string]string{"zone": "north"}, map[string]string{"zone": "south"})
	if err != nil {
		t.Fatalf("EditChanges() error = %v", err)
	}

	var doc map[string]map[string]string
	if err := json.Unmarshal([]byte(changes), &doc); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}
	if doc["before"]["zone"] != "north" || doc["after"]["zone"] != "south" {
		t.Errorf("changes = %s, want before north / after south", changes)
	}
}
