package api

import (
	"strconv" // String conversion

	"medmarket/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// Error codes carried in every error payload. The set is closed; callers
// switch on the code, not the message.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"        // No identity
	CodeForbidden       = "FORBIDDEN"              // Identity present, role insufficient
	CodeNotFound        = "NOT_FOUND"              // Referenced entity absent
	CodeValidation      = "VALIDATION_ERROR"       // Request rejected before any write
	CodeExternal        = "EXTERNAL_SERVICE_ERROR" // Third-party API failure or unparsable response
	CodeInternal        = "INTERNAL"               // Database or unexpected failure
)

// errPayload builds the structured error body {error, code}.
func errPayload(code, msg string) gin.H {
	return gin.H{"error": msg, "code": code}
}

// currentUser returns the identity resolved by the LoadUser middleware.
func currentUser(c *gin.Context) (domain.User, bool) {
	v, exists := c.Get("currentUser")
	if !exists {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

// pagination reads page/page_size query params with the usual caps.
func pagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// totalPages computes the page count for a total row count.
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}
