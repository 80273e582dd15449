package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	orderControllers "github.com/shopcore/shopcore/controllers/order"
	"github.com/shopcore/shopcore/inventory"
	"github.com/shopcore/shopcore/middleware"
)

// SetupOrderRoutes registers the JWT-protected "/orders/*" endpoints.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, tokens *auth.TokenService, ledger *inventory.Ledger) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth(db, tokens))
	{
		// Create a new order
		orders.POST("", orderControllers.CreateOrderHandler(db, ledger))

		// Caller's orders; every order for admins
		orders.GET("", orderControllers.GetOrdersHandler(db))

		// websocket feed of newly created orders (admin)
		orders.GET("/ws", middleware.RequireAdmin(), orderControllers.OrderFeedHandler)

		// Update order status (admin)
		orders.PUT("/:orderID/status", middleware.RequireAdmin(), orderControllers.UpdateOrderStatusHandler(db))
	}
}
