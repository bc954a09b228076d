package api

import (
	"net/http" // HTTP status codes

	"medmarket/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// UpdateUserRequest covers the self-editable profile fields. Email and role
// are never updatable here.
type UpdateUserRequest struct {
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// QuotationPreferenceRequest sets how a vendor hears about quotation outcomes.
type QuotationPreferenceRequest struct {
	Preference string `json:"preference" binding:"required"`
}

// MakeAdminRequest carries the elevation gate.
type MakeAdminRequest struct {
	SetupCode string `json:"setup_code" binding:"required"`
}

// GetCurrentUserHandler returns the resolved identity
func GetCurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateCurrentUserHandler updates the caller's profile fields
func UpdateCurrentUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		// Only the provided fields change
		updates := map[string]any{}
		if req.CompanyName != nil {
			updates["company_name"] = *req.CompanyName
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Nothing to update"))
			return
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update profile"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateQuotationPreferenceHandler sets the vendor's notification preference.
// The route is vendor-gated; buyers and admins never reach this handler.
func UpdateQuotationPreferenceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req QuotationPreferenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if !domain.ValidQuotationPreference(req.Preference) {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Preference must be email, in_app or both"))
			return
		}
		if err := db.Model(&user).Update("quotation_preference", req.Preference).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update preference"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Preference updated", "preference": req.Preference})
	}
}

// MakeAdminHandler elevates the caller to admin when the configured setup code
// matches. An empty configured code disables elevation entirely, and every
// successful elevation leaves an audit line.
func MakeAdminHandler(db *gorm.DB, setupCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req MakeAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Invalid request"))
			return
		}
		if setupCode == "" || req.SetupCode != setupCode {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"ip":      c.ClientIP(),
			}).Warn("Admin elevation denied")
			c.JSON(http.StatusForbidden, errPayload(CodeForbidden, "Invalid setup code"))
			return
		}
		if err := db.Model(&user).Update("role", domain.RoleAdmin).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errPayload(CodeInternal, "Failed to update role"))
			return
		}
		// Audit line: who, from where, when (timestamp comes from the logger)
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
			"ip":      c.ClientIP(),
		}).Warn("Admin elevation granted")
		c.JSON(http.StatusOK, gin.H{"message": "Role updated to admin"})
	}
}
