package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

const categoriesCacheKey = "categories:all"

// CategoryRequest is shared by create and update.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"` // Name must be provided
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// GetCategoriesHandler returns all categories, cached
func GetCategoriesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var cached []domain.Category
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, categoriesCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"categories": cached, "cached": true})
			return
		}
		var categories []domain.Category
		if err := db.Order("name asc").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch categories"))
			return
		}
		_ = utils.SetCache(ctx, rdb, categoriesCacheKey, categories, 300*time.Second)
		c.JSON(http.StatusOK, gin.H{"categories": categories, "cached": false})
	}
}

// CreateCategoryHandler creates a category (admin only, enforced by the route)
func CreateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Category name is required"))
			return
		}
		category := domain.Category{Name: req.Name, Description: req.Description, Icon: req.Icon}
		if err := db.Create(&category).Error; err != nil {
			// Unique index on name makes duplicates fail here
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Category already exists"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, categoriesCacheKey) // Invalidate category cache
		c.JSON(http.StatusCreated, gin.H{"category": category})
	}
}

// UpdateCategoryHandler updates a category (admin only)
func UpdateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category domain.Category
		if err := db.First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Category not found"))
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Category name is required"))
			return
		}
		updates := map[string]any{"name": req.Name, "description": req.Description, "icon": req.Icon}
		if err := db.Model(&category).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update category"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, categoriesCacheKey) // Invalidate category cache
		c.JSON(http.StatusOK, gin.H{"category": category})
	}
}

// DeleteCategoryHandler deletes a category (admin only). Deletion is blocked
// while any product still references the category.
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category domain.Category
		if err := db.First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Category not found"))
			return
		}
		var inUse int64
		if err := db.Model(&domain.Product{}).Where("category_id = ?", category.ID).Count(&inUse).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to check category usage"))
			return
		}
		if inUse > 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Category still has products"))
			return
		}
		if err := db.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to delete category"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, categoriesCacheKey) // Invalidate category cache
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
