package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/models"
)

// EnsureAdmin provisions the admin role and the bootstrap admin account.
// It is safe to run on every startup: creation races and re-runs land on the
// unique constraints and are treated as already-provisioned.
func EnsureAdmin(db *gorm.DB, password string) error {
	if password == "" {
		password = "admin"
	}

	role := models.Role{Name: RoleAdmin, Description: "Administrator role"}
	if err := db.Create(&role).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := db.First(&role, "name = ?", RoleAdmin).Error; err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
		Roles:        []models.Role{role},
	}
	if err := db.Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}
