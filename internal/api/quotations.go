package api

import (
	"errors"   // Sentinel for the lost-award case
	"net/http" // HTTP status codes
	"strings"  // Order product summary assembly

	"medmarket/internal/domain" // Importing domain models
	"medmarket/internal/mailer" // Outbound email
	"medmarket/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money math
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// QuotationRequest is a vendor's offer against an RFQ.
type QuotationRequest struct {
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	PaymentTerms string          `json:"payment_terms"`
	DeliveryTime string          `json:"delivery_time"`
}

// SubmitQuotationHandler appends a vendor quotation to an open RFQ. A vendor
// may quote the same RFQ more than once; each submission is its own row.
func SubmitQuotationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
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
		if rfq.Status != domain.RFQStatusOpen {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "RFQ is not open for quotations"))
			return
		}
		var req QuotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if req.Price.LessThanOrEqual(decimal.Zero) || req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Price and quantity must be positive"))
			return
		}
		quotation := domain.Quotation{
			RFQID:        rfq.ID,
			VendorID:     user.ID,
			VendorName:   user.CompanyName,
			Price:        req.Price,
			Quantity:     req.Quantity,
			PaymentTerms: req.PaymentTerms,
			DeliveryTime: req.DeliveryTime,
			Status:       domain.QuotationStatusPending,
		}
		if err := db.Create(&quotation).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"vendor_id": user.ID,
				"rfq_id":    rfq.ID,
				"error":     err.Error(),
			}).Error("Quotation submission failed")
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to submit quotation"))
			return
		}
		// The buyer always hears about new quotations in-app
		notify(db, rdb, rfq.BuyerID, domain.NotificationQuotationReceived,
			"New quotation on "+rfq.Reference,
			user.CompanyName+" quoted "+req.Price.StringFixed(2)+" for "+rfq.Reference)
		logrus.WithFields(logrus.Fields{
			"vendor_id":    user.ID,
			"rfq_id":       rfq.ID,
			"quotation_id": quotation.ID,
			"price":        req.Price.StringFixed(2),
		}).Info("Quotation submitted")
		c.JSON(http.StatusCreated, gin.H{"quotation": quotation})
	}
}

// errRFQNotOpen signals that another acceptance won the open -> awarded flip.
var errRFQNotOpen = errors.New("rfq is no longer open")

// AcceptQuotationHandler turns one quotation into an order. Only one quotation
// per RFQ can ever be accepted: inside the transaction the RFQ is flipped
// open -> awarded with a guarded update, so of two concurrent accepts exactly
// one commits; the accepted quotation, its rejected siblings, the awarded RFQ
// and the new order all land together.
func AcceptQuotationHandler(db *gorm.DB, rdb *redis.Client, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var quotation domain.Quotation
		if err := db.First(&quotation, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "Quotation not found"))
			return
		}
		var rfq domain.RFQ
		if err := db.Preload("Items").First(&rfq, quotation.RFQID).Error; err != nil {
			c.JSON(http.StatusNotFound, errPayload(CodeNotFound, "RFQ not found"))
			return
		}
		// Only the posting buyer may award
		if rfq.BuyerID != user.ID {
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Not your RFQ"))
			return
		}
		if rfq.Status != domain.RFQStatusOpen {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "RFQ already awarded or closed"))
			return
		}
		// The order summarizes what was asked for
		var names []string
		for _, item := range rfq.Items {
			names = append(names, item.ProductName)
		}
		order := domain.Order{
			OrderNumber: utils.NewReference("ORD"),
			QuotationID: &quotation.ID,
			BuyerID:     rfq.BuyerID,
			VendorID:    quotation.VendorID,
			VendorName:  quotation.VendorName,
			ProductName: strings.Join(names, "; "),
			Quantity:    quotation.Quantity,
			TotalAmount: quotation.Price.Mul(decimal.NewFromInt(int64(quotation.Quantity))),
			Status:      domain.OrderStatusPending,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// The open -> awarded flip is the serialization point: the guard on
			// status makes it succeed for exactly one acceptance per RFQ, even
			// when the earlier read saw a stale "open".
			res := tx.Model(&domain.RFQ{}).
				Where("id = ? AND status = ?", rfq.ID, domain.RFQStatusOpen).
				Update("status", domain.RFQStatusAwarded)
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return errRFQNotOpen // A concurrent accept got here first
			}
			if err := tx.Model(&quotation).Update("status", domain.QuotationStatusAccepted).Error; err != nil {
				return err // Return error to rollback
			}
			// Siblings lose
			if err := tx.Model(&domain.Quotation{}).
				Where("rfq_id = ? AND id <> ?", rfq.ID, quotation.ID).
				Update("status", domain.QuotationStatusRejected).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Create(&order).Error
		})
		if errors.Is(err, errRFQNotOpen) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "RFQ already awarded or closed"))
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"buyer_id":     user.ID,
				"quotation_id": quotation.ID,
				"error":        err.Error(),
			}).Error("Quotation acceptance failed")
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to accept quotation"))
			return
		}
		// Tell the winning vendor, honoring their delivery preference
		var vendor domain.User
		if err := db.First(&vendor, quotation.VendorID).Error; err == nil {
			if vendor.QuotationPreference != domain.QuotationPrefEmail {
				notify(db, rdb, vendor.ID, domain.NotificationQuotationAccepted,
					"Quotation accepted",
					"Your quotation on "+rfq.Reference+" was accepted. Order "+order.OrderNumber+" created.")
			}
			if mail != nil && vendor.QuotationPreference != domain.QuotationPrefInApp {
				if err := mail.Send(c.Request.Context(), vendor.Email, "Quotation accepted",
					"<p>Your quotation on "+rfq.Reference+" was accepted. Order <strong>"+order.OrderNumber+"</strong> has been created.</p>"); err != nil {
					// Email is best effort once the order exists
					logrus.WithFields(logrus.Fields{
						"vendor_id": vendor.ID,
						"error":     err.Error(),
					}).Error("Acceptance email failed")
				}
			}
		}
		logrus.WithFields(logrus.Fields{
			"buyer_id":     user.ID,
			"quotation_id": quotation.ID,
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"total":        order.TotalAmount.StringFixed(2),
		}).Info("Quotation accepted")
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}
