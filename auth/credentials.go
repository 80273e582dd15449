package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/models"
)

var (
	ErrInvalidInput      = errors.New("auth: username, email and password are required")
	ErrDuplicateUsername = errors.New("auth: username already exists")
	ErrDuplicateEmail    = errors.New("auth: email already exists")
	// ErrInvalidCredentials covers both unknown usernames and bad passwords so
	// login failures do not reveal which one was wrong.
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
)

// CreateUser registers a new account. Uniqueness of username and email is
// enforced by the database constraints, so two concurrent registrations with
// the same name cannot both pass: the loser surfaces as a duplicate error.
func CreateUser(db *gorm.DB, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, classifyDuplicate(db, username)
		}
		return models.User{}, err
	}
	return user, nil
}

// classifyDuplicate decides which unique constraint fired. The insert already
// failed atomically; this extra read only picks the error message.
func classifyDuplicate(db *gorm.DB, username string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err == nil && count > 0 {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}

// VerifyCredentials resolves a username/password pair to the stored user.
// Deactivated accounts cannot log in.
func VerifyCredentials(db *gorm.DB, username, password string) (models.User, error) {
	var user models.User
	if err := db.Preload("Roles").First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
