package database

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/h21s/table-tracker/models"
	"github.com/h21s/table-tracker/utils"
)

// Migrate menjalankan AutoMigrate untuk semua model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Transaction{},
		&models.Session{},
	)
}

// SeedDefaultUsers membuat akun admin/staff default kalau tabel user
// masih kosong, supaya instalasi baru langsung bisa login.
func SeedDefaultUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		username, password, role string
	}{
		{"admin", "admin123", "admin"},
		{"staff1", "staff123", "staff"},
	}

	for _, u := range defaults {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{Username: u.username, Password: string(hashed), Role: u.role}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}

	utils.InfoLogger.Printf("Seeded %d default users", len(defaults))
	return nil
}
