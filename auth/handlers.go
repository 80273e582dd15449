package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// RegisterHandler creates a new user account.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing username, password, or email"})
			return
		}

		user, err := CreateUser(db, req.Username, req.Email, req.Password)
		switch {
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			zap.S().Errorw("register failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		default:
			c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully", "user_id": user.ID})
		}
	}
}

// LoginHandler exchanges HTTP basic credentials for a signed token.
func LoginHandler(db *gorm.DB, tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="Login required"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "could not verify"})
			return
		}

		user, err := VerifyCredentials(db, username, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				c.Header("WWW-Authenticate", `Basic realm="Login required"`)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "could not verify"})
				return
			}
			zap.S().Errorw("login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
			return
		}

		token, err := tokens.Issue(user.ID, DefaultTokenTTL)
		if err != nil {
			zap.S().Errorw("token issue failed", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
