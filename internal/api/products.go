package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // Cache key assembly
	"time"     // Cache TTLs

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money math
	"gorm.io/gorm"                  // GORM ORM library
)

// ProductRequest is shared by create and update. Either an image URL or a
// storage id may be supplied; the storage id is turned into a CDN URL.
type ProductRequest struct {
	Name           string          `json:"name"`
	CategoryID     uint            `json:"category_id"`
	Description    string          `json:"description"`
	Specifications string          `json:"specifications"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	ImageStorageID string          `json:"image_storage_id"`
}

// ListProductsHandler returns products with optional category/vendor filters,
// paginated and cached like the admin listings
func ListProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"category_id", "vendor_id", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, ""))
		}
		cacheKey := "products:" + strings.Join(keyParts, ":")
		var cached struct {
			Products   []domain.Product `json:"products"`
			Page       int              `json:"page"`
			PageSize   int              `json:"page_size"`
			Total      int64            `json:"total"`
			TotalPages int              `json:"total_pages"`
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"products":    cached.Products,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		page, pageSize, offset := pagination(c)
		query := db.Model(&domain.Product{}) // Start building the query
		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID) // Filter by category
		}
		if vendorID := c.Query("vendor_id"); vendorID != "" {
			query = query.Where("vendor_id = ?", vendorID) // Filter by vendor
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count products"))
			return
		}
		var products []domain.Product
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch products"))
			return
		}
		respData := gin.H{
			"products":    products,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// GetProductHandler returns one product
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// invalidateProductCache drops the first pages of the unfiltered listing.
// Filtered keys age out via their 60s TTL.
func invalidateProductCache(rdb *redis.Client) {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_ = utils.DeleteCache(ctx, rdb, "products:category_id=:vendor_id=:page="+strconv.Itoa(i)+":page_size=")
	}
	_ = utils.DeleteCache(ctx, rdb, "products:category_id=:vendor_id=:page=:page_size=")
}

// resolveImage prefers an explicit URL, else builds the CDN URL from a storage id.
func resolveImage(req ProductRequest, cdnHost string) string {
	if req.Image != "" {
		return req.Image
	}
	if req.ImageStorageID != "" {
		return utils.CDNURL(cdnHost, req.ImageStorageID)
	}
	return ""
}

// CreateProductHandler adds a catalog product owned by the calling vendor
func CreateProductHandler(db *gorm.DB, rdb *redis.Client, cdnHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		// Name, category and description are required
		if req.Name == "" || req.CategoryID == 0 || req.Description == "" {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Name, category and description are required"))
			return
		}
		var category domain.Category
		if err := db.First(&category, req.CategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Category not found"))
			return
		}
		product := domain.Product{
			VendorID:       user.ID,
			CategoryID:     req.CategoryID,
			Name:           req.Name,
			Description:    req.Description,
			Specifications: req.Specifications,
			SKU:            req.SKU,
			Price:          req.Price,
			Image:          resolveImage(req, cdnHost),
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to create product"))
			return
		}
		invalidateProductCache(rdb)
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

// UpdateProductHandler updates a product; only the owning vendor or an admin may
func UpdateProductHandler(db *gorm.DB, rdb *redis.Client, cdnHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var product domain.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Product not found"))
			return
		}
		// Ownership check: vendors may only edit their own catalog
		if user.Role != domain.RoleAdmin && product.VendorID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your product"))
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		updates := map[string]any{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.CategoryID != 0 {
			updates["category_id"] = req.CategoryID
		}
		if req.Description != "" {
			updates["description"] = req.Description
		}
		if req.Specifications != "" {
			updates["specifications"] = req.Specifications
		}
		if req.SKU != "" {
			updates["sku"] = req.SKU
		}
		if !req.Price.IsZero() {
			updates["price"] = req.Price
		}
		if img := resolveImage(req, cdnHost); img != "" {
			updates["image"] = img
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Nothing to update"))
			return
		}
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update product"))
			return
		}
		invalidateProductCache(rdb)
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// DeleteProductHandler removes a product; only the owning vendor or an admin may
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var product domain.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Product not found"))
			return
		}
		if user.Role != domain.RoleAdmin && product.VendorID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your product"))
			return
		}
		if err := db.Delete(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to delete product"))
			return
		}
		invalidateProductCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
