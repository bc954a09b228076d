package api

import (
	"net/http" // HTTP status codes
	"time"     // Deadline math

	"medmarket/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money math
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// defaultGroupBuyWindow applies when no deadline is given.
const defaultGroupBuyWindow = 14 * 24 * time.Hour

// CreateGroupBuyRequest opens a bulk-demand aggregation for one product.
type CreateGroupBuyRequest struct {
	ProductID      *uint           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TargetQuantity int             `json:"target_quantity"`
	Deadline       string          `json:"deadline"` // RFC3339, optional
}

// PledgeRequest commits a buyer's quantity.
type PledgeRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// CreateGroupBuyHandler opens a group buy owned by the calling vendor
func CreateGroupBuyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req CreateGroupBuyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if req.ProductName == "" || req.TargetQuantity <= 0 || req.UnitPrice.LessThanOrEqual(decimal.Zero) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Product name, positive target quantity and unit price are required"))
			return
		}
		deadline := time.Now().Add(defaultGroupBuyWindow)
		if req.Deadline != "" {
			parsed, err := time.Parse(time.RFC3339, req.Deadline)
			if err != nil || parsed.Before(time.Now()) {
				c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Deadline must be a future RFC3339 timestamp"))
				return
			}
			deadline = parsed
		}
		gb := domain.GroupBuy{
			VendorID:       user.ID,
			ProductID:      req.ProductID,
			ProductName:    req.ProductName,
			UnitPrice:      req.UnitPrice,
			TargetQuantity: req.TargetQuantity,
			Status:         domain.GroupBuyStatusOpen,
			Deadline:       deadline.UnixMilli(),
		}
		if err := db.Create(&gb).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to create group buy"))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"group_buy": gb})
	}
}

// ListGroupBuysHandler returns open group buys, paginated
func ListGroupBuysHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		var total int64
		if err := db.Model(&domain.GroupBuy{}).Where("status = ?", domain.GroupBuyStatusOpen).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count group buys"))
			return
		}
		var groupBuys []domain.GroupBuy
		if err := db.Where("status = ?", domain.GroupBuyStatusOpen).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&groupBuys).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch group buys"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"group_buys":  groupBuys,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// PledgeHandler adds a buyer's quantity to an open group buy. Pledge row and
// committed-quantity bump commit together; crossing the target flips the
// status to filled and notifies every pledger.
func PledgeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var gb domain.GroupBuy
		if err := db.First(&gb, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Group buy not found"))
			return
		}
		if gb.Status != domain.GroupBuyStatusOpen {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Group buy is not open"))
			return
		}
		if time.Now().UnixMilli() > gb.Deadline {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Group buy deadline has passed"))
			return
		}
		var req PledgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Positive quantity required"))
			return
		}
		filled := false
		err := db.Transaction(func(tx *gorm.DB) error {
			pledge := domain.GroupBuyPledge{GroupBuyID: gb.ID, BuyerID: user.ID, Quantity: req.Quantity}
			if err := tx.Create(&pledge).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Model(&gb).
				Update("committed_quantity", gorm.Expr("committed_quantity + ?", req.Quantity)).Error; err != nil {
				return err // Return error to rollback
			}
			// Re-read inside the transaction to observe the bumped total
			if err := tx.First(&gb, gb.ID).Error; err != nil {
				return err
			}
			if gb.CommittedQuantity >= gb.TargetQuantity {
				filled = true
				return tx.Model(&gb).Update("status", domain.GroupBuyStatusFilled).Error
			}
			return nil
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"group_buy_id": gb.ID,
				"buyer_id":     user.ID,
				"error":        err.Error(),
			}).Error("Pledge failed")
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to pledge"))
			return
		}
		if filled {
			// Everyone who pledged gets the good news, plus the vendor
			var pledges []domain.GroupBuyPledge
			if err := db.Where("group_buy_id = ?", gb.ID).Find(&pledges).Error; err == nil {
				seen := map[uint]bool{}
				for _, p := range pledges {
					if seen[p.BuyerID] {
						continue // One notification per buyer
					}
					seen[p.BuyerID] = true
					notify(db, rdb, p.BuyerID, domain.NotificationGroupBuyFilled,
						"Group buy filled",
						"The group buy for "+gb.ProductName+" reached its target quantity.")
				}
			}
			notify(db, rdb, gb.VendorID, domain.NotificationGroupBuyFilled,
				"Group buy filled",
				"Your group buy for "+gb.ProductName+" reached its target quantity.")
		}
		logrus.WithFields(logrus.Fields{
			"group_buy_id": gb.ID,
			"buyer_id":     user.ID,
			"quantity":     req.Quantity,
			"filled":       filled,
		}).Info("Pledge recorded")
		c.JSON(http.StatusCreated, gin.H{"group_buy": gb})
	}
}

// CancelGroupBuyHandler cancels an open group buy (owning vendor or admin)
func CancelGroupBuyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var gb domain.GroupBuy
		if err := db.First(&gb, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Group buy not found"))
			return
		}
		if user.Role != domain.RoleAdmin && gb.VendorID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your group buy"))
			return
		}
		if gb.Status != domain.GroupBuyStatusOpen {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Only open group buys can be cancelled"))
			return
		}
		if err := db.Model(&gb).Update("status", domain.GroupBuyStatusCancelled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to cancel group buy"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Group buy cancelled"})
	}
}
