package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore/models"
)

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	CategoryID  *uint    `json:"category_id"`
}

// UpdateProduct applies only the fields present in the request, leaving the
// rest unchanged. Validation happens before any field is written.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
			return
		}

		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Price != nil && *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}
		if req.Stock != nil && *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must not be negative"})
			return
		}
		// Only supplied columns go into the UPDATE. Writing the whole row back
		// would restore a stale stock value read before a concurrent decrement.
		updates := map[string]interface{}{}
		if req.CategoryID != nil {
			var category models.Category
			if err := db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch category"})
				return
			}
			product.CategoryID = *req.CategoryID
			product.Category = category
			updates["category_id"] = *req.CategoryID
		}

		if req.Name != nil {
			product.Name = *req.Name
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			product.Price = *req.Price
			updates["price"] = *req.Price
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
			updates["stock"] = *req.Stock
		}

		if len(updates) > 0 {
			if err := db.Model(&product).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
				return
			}
		}
		c.JSON(http.StatusOK, product)
	}
}
