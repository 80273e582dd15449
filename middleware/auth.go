package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	"github.com/shopcore/shopcore/models"
)

const userContextKey = "current_user"

// RequireAuth validates the bearer token and resolves the full user record,
// passing it down through the request context. Handlers behind it never touch
// raw claims.
func RequireAuth(db *gorm.DB, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is missing"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		userID, err := tokens.Validate(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token has expired"})
			case errors.Is(err, auth.ErrTokenMissing):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token is missing"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token is invalid"})
			}
			c.Abort()
			return
		}

		var user models.User
		if err := db.Preload("Roles").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The subject no longer exists; the token no longer names
				// anyone, so this is an authentication failure.
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token is invalid"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by RequireAuth.
func CurrentUser(c *gin.Context) models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return models.User{}
	}
	user, _ := value.(models.User)
	return user
}

// RequireAdmin gates a route on the admin role. It must run behind RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(CurrentUser(c), auth.RoleAdmin); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
