package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key assembly

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/export" // CSV generation
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// RFQItemRequest is one requested line.
type RFQItemRequest struct {
	ProductID   *uint  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// CreateRFQRequest posts a new request-for-quotation.
type CreateRFQRequest struct {
	Items    []RFQItemRequest `json:"items"`
	FromCart bool             `json:"from_cart"` // Clear the redis cart after posting
}

// CreateRFQHandler persists a buyer's RFQ. The item list is validated
// server-side: it must be non-empty and every quantity positive.
func CreateRFQHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req CreateRFQRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "RFQ needs at least one item"))
			return
		}
		for _, item := range req.Items {
			if item.ProductName == "" || item.Quantity <= 0 {
				c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Every item needs a product name and a positive quantity"))
				return
			}
		}
		rfq := domain.RFQ{
			Reference: utils.NewReference("RFQ"),
			BuyerID:   user.ID,
			Status:    domain.RFQStatusOpen,
		}
		for _, item := range req.Items {
			rfq.Items = append(rfq.Items, domain.RFQItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
			})
		}
		// RFQ and items land together
		if err := db.Create(&rfq).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"buyer_id": user.ID,
				"error":    err.Error(),
			}).Error("RFQ creation failed")
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to create RFQ"))
			return
		}
		if req.FromCart {
			// The cart has served its purpose
			_ = utils.DeleteCache(context.Background(), rdb, cartKey(user.ID))
		}
		logrus.WithFields(logrus.Fields{
			"buyer_id":  user.ID,
			"rfq_id":    rfq.ID,
			"reference": rfq.Reference,
			"items":     len(rfq.Items),
		}).Info("RFQ created")
		c.JSON(http.StatusCreated, gin.H{"rfq": rfq})
	}
}

// ListOpenRFQsHandler returns open RFQs for vendors to quote, paginated
func ListOpenRFQsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		var total int64
		if err := db.Model(&domain.RFQ{}).Where("status = ?", domain.RFQStatusOpen).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count RFQs"))
			return
		}
		var rfqs []domain.RFQ
		if err := db.Preload("Items").
			Where("status = ?", domain.RFQStatusOpen).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&rfqs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch RFQs"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"rfqs":        rfqs,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// MyRFQsHandler returns the calling buyer's RFQs with quotations
func MyRFQsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var rfqs []domain.RFQ
		if err := db.Preload("Items").Preload("Quotations").
			Where("buyer_id = ?", user.ID).
			Order("created_at desc").
			Find(&rfqs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch RFQs"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"rfqs": rfqs})
	}
}

// loadRFQForViewer fetches an RFQ and applies the access rule: the owning
// buyer, any vendor, and admins may see it.
func loadRFQForViewer(db *gorm.DB, c *gin.Context, user domain.User) (domain.RFQ, bool) {
	var rfq domain.RFQ
	if err := db.Preload("Items").Preload("Quotations").First(&rfq, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "RFQ not found"))
		return rfq, false
	}
	if user.Role == domain.RoleBuyer && rfq.BuyerID != user.ID {
		c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your RFQ"))
		return rfq, false
	}
	return rfq, true
}

// GetRFQHandler returns one RFQ with items and quotations
func GetRFQHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		rfq, ok := loadRFQForViewer(db, c, user)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"rfq": rfq})
	}
}

// CloseRFQHandler lets the owning buyer close an open RFQ without awarding
func CloseRFQHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var rfq domain.RFQ
		if err := db.First(&rfq, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "RFQ not found"))
			return
		}
		if rfq.BuyerID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your RFQ"))
			return
		}
		if rfq.Status != domain.RFQStatusOpen {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Only open RFQs can be closed"))
			return
		}
		if err := db.Model(&rfq).Update("status", domain.RFQStatusClosed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to close RFQ"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "RFQ closed"})
	}
}

// ExportRFQHandler streams the RFQ as CSV. Zero-quotation RFQs still export
// one "Pending" row per item.
func ExportRFQHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		rfq, ok := loadRFQForViewer(db, c, user)
		if !ok {
			return
		}
		csvBody, err := export.RFQCSV(rfq)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to build CSV"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+rfq.Reference+`.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(csvBody))
	}
}

// cartKey is the redis key of a buyer's RFQ cart.
func cartKey(userID uint) string {
	return "cart:user:" + strconv.Itoa(int(userID))
}
