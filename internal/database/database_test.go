package database

import (
	"path/filepath"
	"testing"

	"sprintsync/internal/config"
	"sprintsync/internal/models"
)

func TestInitEnforcesTaskOwnerFK(t *testing.T) {
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	bogus := uint(9999)
	task := models.Task{Title: "orphan", Status: models.StatusTodo, UserID: &bogus}
	if err := db.Create(&task).Error; err == nil {
		t.Fatal("create with unknown owner succeeded, want foreign key violation")
	}

	user := models.User{Username: "owner", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	owned := models.Task{Title: "ok", Status: models.StatusTodo, UserID: &user.ID}
	if err := db.Create(&owned).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
}
