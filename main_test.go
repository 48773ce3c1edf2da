package main

import (
	"os"
	"testing"

	"campus-voice-server/models"
	"campus-voice-server/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEnsureAdminUserSurvivesRestartAndRotatesPassword(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:adminboot?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	storage.DB = db

	os.Setenv("ADMIN_EMAIL", "admin@example.com")
	os.Setenv("ADMIN_PASSWORD", "first-password")
	ensureAdminUser()

	var admin models.User
	if err := storage.DB.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		t.Fatalf("admin row not created: %v", err)
	}
	if admin.Role != "super_admin" {
		t.Errorf("bootstrap role = %q, want super_admin", admin.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("first-password")) != nil {
		t.Error("stored hash does not match first password")
	}

	// Second boot with a changed password: must match the existing row by email
	// (not collide on the unique index) and rotate the stored hash.
	os.Setenv("ADMIN_PASSWORD", "second-password")
	ensureAdminUser()

	var count int64
	storage.DB.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&count)
	if count != 1 {
		t.Fatalf("admin rows after second boot = %d, want 1", count)
	}
	if err := storage.DB.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		t.Fatalf("reload admin row: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("second-password")) != nil {
		t.Error("stored hash was not rotated to the new password")
	}
}
