package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	productcontroller "github.com/shopcore/shopcore/controllers/product"
	"github.com/shopcore/shopcore/middleware"
)

// SetupAdminRoutes registers catalog management. Requires a valid token and
// the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, tokens *auth.TokenService) {
	adminGroup := r.Group("")
	adminGroup.Use(middleware.RequireAuth(db, tokens), middleware.RequireAdmin())
	{
		// ─────────── Product Management ───────────
		adminGroup.POST("/products", productcontroller.CreateProduct(db))
		adminGroup.PUT("/products/:id", productcontroller.UpdateProduct(db))
		adminGroup.DELETE("/products/:id", productcontroller.DeleteProduct(db))
		adminGroup.GET("/admin/products/export", productcontroller.ExportProductsToExcel(db))

		// ─────────── Category Management ───────────
		adminGroup.POST("/categories", productcontroller.CreateCategory(db))
	}
}
