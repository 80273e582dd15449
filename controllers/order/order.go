package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/auth"
	"github.com/shopcore/shopcore/inventory"
	"github.com/shopcore/shopcore/middleware"
	"github.com/shopcore/shopcore/models"
)

var ErrEmptyOrder = errors.New("order: at least one item is required")

type CreateOrderRequest struct {
	Items []inventory.Line `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(status) {
	case models.OrderStatusPending, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return models.OrderStatus(status), nil
	default:
		return "", errors.New("invalid order status")
	}
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Core Logic --------

// CreateOrder places an order for the user. Stock validation, the decrements
// and the order insert all commit or roll back together: the ledger drives the
// transaction and persists the order inside it. Item prices come only from the
// ledger's snapshots, never from a re-read of the product.
func CreateOrder(db *gorm.DB, ledger *inventory.Ledger, user models.User, lines []inventory.Line) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	var order models.Order
	_, err := ledger.ReserveAndDecrement(db, lines, func(tx *gorm.DB, reservations []inventory.Reservation) error {
		var total float64
		items := make([]models.OrderItem, 0, len(reservations))
		for _, res := range reservations {
			items = append(items, models.OrderItem{
				ProductID: res.Product.ID,
				Quantity:  res.Quantity,
				Price:     res.UnitPrice,
			})
			total += res.UnitPrice * float64(res.Quantity)
		}

		order = models.Order{
			OrderRef:    generateOrderRef(),
			UserID:      user.ID,
			Items:       items,
			TotalAmount: total,
			Status:      models.OrderStatusPending,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrders returns the user's own orders, newest first.
func ListOrders(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListAllOrders returns every order, newest first. Admin only.
func ListAllOrders(db *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// -------- Handlers --------

// CreateOrderHandler places an order for the authenticated user.
func CreateOrderHandler(db *gorm.DB, ledger *inventory.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item data"})
			return
		}

		user := middleware.CurrentUser(c)
		order, err := CreateOrder(db, ledger, user, req.Items)
		if err != nil {
			var notFound *inventory.NotFoundError
			var invalidQty *inventory.InvalidQuantityError
			var insufficient *inventory.InsufficientStockError
			switch {
			case errors.Is(err, ErrEmptyOrder):
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing items"})
			case errors.As(err, &invalidQty):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.As(err, &notFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.As(err, &insufficient):
				c.JSON(http.StatusConflict, gin.H{
					"error":     err.Error(),
					"available": insufficient.Available,
					"requested": insufficient.Requested,
				})
			default:
				zap.S().Errorw("order creation failed", "user_id", user.ID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
			}
			return
		}

		broadcastNewOrder(order)
		c.JSON(http.StatusCreated, order)
	}
}

// GetOrdersHandler lists the caller's orders; admins see every order.
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var (
			orders []models.Order
			err    error
		)
		if auth.HasRole(user, auth.RoleAdmin) {
			orders, err = ListAllOrders(db)
		} else {
			orders, err = ListOrders(db, user.ID)
		}
		if err != nil {
			zap.S().Errorw("order listing failed", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler moves an order through the fulfillment states.
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing status"})
			return
		}
		status, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result := db.Model(&models.Order{}).Where("id = ?", c.Param("orderID")).Update("status", status)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
	}
}
