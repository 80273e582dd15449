package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	userControllers "github.com/shopcore/shopcore/controllers/user"
	"github.com/shopcore/shopcore/middleware"
)

// SetupUserRoutes registers the JWT-protected "/users/*" endpoints.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, tokens *auth.TokenService) {
	userGroup := r.Group("/users")
	userGroup.Use(middleware.RequireAuth(db, tokens))
	{
		userGroup.GET("", middleware.RequireAdmin(), userControllers.GetAllUsers(db))
		userGroup.GET("/:id", userControllers.GetUserByID(db))
	}
}
