package api

import (
	"net/http" // HTTP status codes

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/export" // CSV generation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// OrderStatusRequest moves an order along its lifecycle.
type OrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// scopeOrders restricts the query to the caller's side of the marketplace.
// Admins see everything.
func scopeOrders(db *gorm.DB, user domain.User) *gorm.DB {
	query := db.Model(&domain.Order{})
	switch user.Role {
	case domain.RoleBuyer:
		return query.Where("buyer_id = ?", user.ID)
	case domain.RoleVendor:
		return query.Where("vendor_id = ?", user.ID)
	default:
		return query
	}
}

// ListOrdersHandler returns the caller's orders, paginated
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		page, pageSize, offset := pagination(c)
		var total int64
		if err := scopeOrders(db, user).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to count orders"))
			return
		}
		var orders []domain.Order
		if err := scopeOrders(db, user).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch orders"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":      orders,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		})
	}
}

// loadOrderForParty fetches an order the caller participates in.
func loadOrderForParty(db *gorm.DB, c *gin.Context, user domain.User) (domain.Order, bool) {
	var order domain.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Order not found"))
		return order, false
	}
	if user.Role != domain.RoleAdmin && order.BuyerID != user.ID && order.VendorID != user.ID {
		c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your order"))
		return order, false
	}
	return order, true
}

// UpdateOrderStatusHandler applies one lifecycle transition. Vendors drive the
// fulfilment path; cancellation from pending/processing is open to both
// parties. Shipping requires a tracking number.
func UpdateOrderStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		order, ok := loadOrderForParty(db, c, user)
		if !ok {
			return
		}
		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Status is required"))
			return
		}
		next := domain.OrderStatus(req.Status)
		if !order.Status.CanTransition(next) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid status transition"))
			return
		}
		// Buyers may only cancel or confirm delivery; the rest is the vendor's
		if user.Role == domain.RoleBuyer && next != domain.OrderStatusCancelled && next != domain.OrderStatusDelivered {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Buyers may only cancel or confirm delivery"))
			return
		}
		updates := map[string]any{"status": next}
		if next == domain.OrderStatusShipped {
			if req.TrackingNumber == "" {
				c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Tracking number required to mark shipped"))
				return
			}
			updates["tracking_number"] = req.TrackingNumber
		}
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update order"))
			return
		}
		// Tell the other side
		counterparty := order.BuyerID
		if user.ID == order.BuyerID {
			counterparty = order.VendorID
		}
		notify(db, rdb, counterparty, domain.NotificationOrderUpdate,
			"Order "+order.OrderNumber+" "+string(next),
			"Order "+order.OrderNumber+" is now "+string(next)+".")
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"by_user":  user.ID,
			"status":   next,
		}).Info("Order status updated")
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// ExportOrderHandler streams a single order as CSV
func ExportOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		order, ok := loadOrderForParty(db, c, user)
		if !ok {
			return
		}
		csvBody, err := export.OrderCSV(order)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to build CSV"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+order.OrderNumber+`.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(csvBody))
	}
}

// ExportOrdersHandler streams every order visible to the caller as one CSV
func ExportOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var orders []domain.Order
		if err := scopeOrders(db, user).Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to fetch orders"))
			return
		}
		csvBody, err := export.OrdersCSV(orders)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to build CSV"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(csvBody))
	}
}
