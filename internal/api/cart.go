package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Path param parsing

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// The RFQ cart is a per-user scratch list kept in redis without expiry. It is
// single-writer (the owning buyer) so plain read-modify-write is enough.

// CartItemRequest adds or merges one product line.
type CartItemRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

// CartQuantityRequest sets the quantity of one line.
type CartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// mergeCartItem adds one line to the list; quantities add up when the product
// is already present.
func mergeCartItem(items []domain.CartItem, add domain.CartItem) []domain.CartItem {
	for i := range items {
		if items[i].ProductID == add.ProductID {
			items[i].Quantity += add.Quantity // Same product: quantities add up
			return items
		}
	}
	return append(items, add)
}

// setCartQuantity sets the quantity of one line. The second return is false
// when the product is not in the list.
func setCartQuantity(items []domain.CartItem, productID uint, quantity int) ([]domain.CartItem, bool) {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

// removeCartItem drops every line for the product.
func removeCartItem(items []domain.CartItem, productID uint) []domain.CartItem {
	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	return kept
}

// loadCart reads the caller's cart; a missing key is an empty cart.
func loadCart(ctx context.Context, rdb *redis.Client, userID uint) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if _, err := utils.GetCache(ctx, rdb, cartKey(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCartHandler returns the caller's cart
func GetCartHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		items, err := loadCart(context.Background(), rdb, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to load cart"))
			return
		}
		if items == nil {
			items = []domain.CartItem{} // Empty cart serializes as []
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// AddCartItemHandler adds a line, merging quantities on an existing product
func AddCartItemHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Product and positive quantity required"))
			return
		}
		ctx := context.Background()
		items, err := loadCart(ctx, rdb, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to load cart"))
			return
		}
		items = mergeCartItem(items, domain.CartItem{ProductID: req.ProductID, ProductName: req.ProductName, Quantity: req.Quantity})
		if err := utils.SetCache(ctx, rdb, cartKey(user.ID), items, 0); err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to save cart"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// UpdateCartItemHandler sets the quantity of one line
func UpdateCartItemHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		productID, err := strconv.Atoi(c.Param("productID"))
		if err != nil || productID <= 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid product id"))
			return
		}
		var req CartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Positive quantity required"))
			return
		}
		ctx := context.Background()
		items, err := loadCart(ctx, rdb, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to load cart"))
			return
		}
		items, found := setCartQuantity(items, uint(productID), req.Quantity)
		if !found {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Product not in cart"))
			return
		}
		if err := utils.SetCache(ctx, rdb, cartKey(user.ID), items, 0); err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to save cart"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// RemoveCartItemHandler drops one line
func RemoveCartItemHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		productID, err := strconv.Atoi(c.Param("productID"))
		if err != nil || productID <= 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid product id"))
			return
		}
		ctx := context.Background()
		items, err := loadCart(ctx, rdb, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to load cart"))
			return
		}
		kept := removeCartItem(items, uint(productID))
		if err := utils.SetCache(ctx, rdb, cartKey(user.ID), kept, 0); err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to save cart"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": kept})
	}
}

// ClearCartHandler empties the cart
func ClearCartHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		if err := utils.DeleteCache(context.Background(), rdb, cartKey(user.ID)); err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to clear cart"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
