package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key assembly
	"time"     // Cache TTLs

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// unreadCountKey is the per-user cache key for the unread badge.
func unreadCountKey(userID uint) string {
	return "notifications:unread:user:" + strconv.Itoa(int(userID))
}

// notify persists a notification and invalidates the recipient's unread badge.
// Failures are logged, never propagated; a lost notification must not fail the
// operation that produced it.
func notify(db *gorm.DB, rdb *redis.Client, userID uint, ntype, title, message string) {
	n := domain.Notification{UserID: userID, Type: ntype, Title: title, Message: message}
	if err := db.Create(&n).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"type":    ntype,
			"error":   err.Error(),
		}).Error("Failed to create notification")
		return
	}
	_ = utils.DeleteCache(context.Background(), rdb, unreadCountKey(userID))
}

// ListNotificationsHandler returns the caller's notifications, newest first
func ListNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		page, pageSize, offset := pagination(c)
		var total int64
		if err := db.Model(&domain.Notification{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count notifications"))
			return
		}
		var notifications []domain.Notification
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch notifications"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"notifications": notifications,
			"page":          page,
			"page_size":     pageSize,
			"total":         total,
			"total_pages":   totalPages(total, pageSize),
		})
	}
}

// UnreadCountHandler returns the caller's unread badge count, cached briefly
func UnreadCountHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		ctx := context.Background()
		var cached int64
		found, err := utils.GetCache(ctx, rdb, unreadCountKey(user.ID), &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"unread": cached, "cached": true})
			return
		}
		var unread int64
		if err := db.Model(&domain.Notification{}).
			Where("user_id = ? AND `read` = ?", user.ID, false).
			Count(&unread).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count notifications"))
			return
		}
		_ = utils.SetCache(ctx, rdb, unreadCountKey(user.ID), unread, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"unread": unread, "cached": false})
	}
}

// MarkReadHandler flips one notification to read; the flag only moves
// false -> true, re-reading is a no-op
func MarkReadHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var n domain.Notification
		if err := db.First(&n, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Notification not found"))
			return
		}
		// Only the recipient may mark it
		if n.UserID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your notification"))
			return
		}
		if !n.Read {
			if err := db.Model(&n).Update("read", true).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update notification"))
				return
			}
			_ = utils.DeleteCache(context.Background(), rdb, unreadCountKey(user.ID))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllReadHandler flips every unread notification of the caller
func MarkAllReadHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		if err := db.Model(&domain.Notification{}).
			Where("user_id = ? AND `read` = ?", user.ID, false).
			Update("read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update notifications"))
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, unreadCountKey(user.ID))
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
	}
}

// ContactAdminRequest is a user message to the platform admins.
type ContactAdminRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ContactAdminHandler fans the message out to every admin account
func ContactAdminHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req ContactAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Subject and message are required"))
			return
		}
		var admins []domain.User
		if err := db.Where("role = ?", domain.RoleAdmin).Find(&admins).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch admins"))
			return
		}
		for _, admin := range admins {
			notify(db, rdb, admin.ID, domain.NotificationAdminContact,
				req.Subject, req.Message+" (from "+user.Email+")")
		}
		c.JSON(http.StatusOK, gin.H{"message": "Message sent to administrators"})
	}
}
