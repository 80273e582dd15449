package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	"github.com/shopcore/shopcore/inventory"
)

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, tokens *auth.TokenService, ledger *inventory.Ledger) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db, tokens)

	// Public catalog reads
	SetupCatalogRoutes(r, db)

	// JWT-protected user routes
	SetupUserRoutes(r, db, tokens)

	// JWT + admin-role protected management routes
	SetupAdminRoutes(r, db, tokens)

	// order routes
	SetupOrderRoutes(r, db, tokens, ledger)

	// prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
