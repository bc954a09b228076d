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

const siteSettingsCacheKey = "sitesettings:all"

// SiteSettingRequest sets one value.
type SiteSettingRequest struct {
	Value string `json:"value"`
}

// mergedSettings returns every default key, overridden by persisted rows.
// An empty override set yields exactly the defaults.
func mergedSettings(db *gorm.DB) (map[string]string, error) {
	merged := make(map[string]string, len(domain.DefaultSiteSettings))
	for k, v := range domain.DefaultSiteSettings {
		merged[k] = v
	}
	var rows []domain.SiteSetting
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		merged[row.SettingKey] = row.Value
	}
	return merged, nil
}

// upsertSetting writes one override row, creating or updating as needed.
func upsertSetting(db *gorm.DB, key, value string) error {
	var row domain.SiteSetting
	err := db.Where("setting_key = ?", key).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&domain.SiteSetting{SettingKey: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&row).Update("value", value).Error
}

// GetSiteSettingsHandler returns the merged settings map, cached
func GetSiteSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var cached map[string]string
		found, err := utils.GetCache(ctx, rdb, siteSettingsCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"settings": cached, "cached": true})
			return
		}
		merged, err := mergedSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch settings"))
			return
		}
		_ = utils.SetCache(ctx, rdb, siteSettingsCacheKey, merged, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"settings": merged, "cached": false})
	}
}

// UpdateSiteSettingHandler overrides one known key (admin only)
func UpdateSiteSettingHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		// Unknown keys would silently disappear from the merge, so reject them
		if !domain.KnownSettingKey(key) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Unknown setting key"))
			return
		}
		var req SiteSettingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if err := upsertSetting(db, key, req.Value); err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update setting"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, siteSettingsCacheKey) // Invalidate settings cache
		c.JSON(http.StatusOK, gin.H{"message": "Setting updated", "key": key, "value": req.Value})
	}
}

// UpdateSiteSettingsHandler overrides several keys at once (admin only)
func UpdateSiteSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req map[string]string
		if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		for key := range req {
			if !domain.KnownSettingKey(key) {
				c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Unknown setting key: "+key))
				return
			}
		}
		// All or nothing
		err := db.Transaction(func(tx *gorm.DB) error {
			for key, value := range req {
				if err := upsertSetting(tx, key, value); err != nil {
					return err // Return error to rollback
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update settings"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, siteSettingsCacheKey) // Invalidate settings cache
		c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
	}
}

// ResetSiteSettingsHandler deletes every override, restoring defaults (admin only)
func ResetSiteSettingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Where("1 = 1").Delete(&domain.SiteSetting{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to reset settings"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, siteSettingsCacheKey) // Invalidate settings cache
		c.JSON(http.StatusOK, gin.H{"settings": domain.DefaultSiteSettings})
	}
}
