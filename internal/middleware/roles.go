package middleware

import (
	"net/http" // HTTP status codes

	"medmarket/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// LoadUser resolves the authenticated user row once per request and stashes it
// in the context under "currentUser". Handlers read the resolved identity from
// the context instead of querying the database ad hoc.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Set by JWTAuthMiddleware
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHENTICATED"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token references a user that no longer exists
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHENTICATED"})
			return
		}
		if user.Status != "active" {
			// Suspended accounts keep their token but lose access
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account suspended", "code": "FORBIDDEN"})
			return
		}
		c.Set("currentUser", user) // Resolved identity for downstream handlers
		c.Next()
	}
}

// RequireRole allows only callers whose resolved role is in the given set.
// Unknown roles fall through to deny.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("currentUser") // Set by LoadUser
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHENTICATED"})
			return
		}
		user := v.(domain.User)
		// Exhaustive membership check against the closed role set
		for _, r := range roles {
			if user.Role == r && user.Role.Valid() {
				c.Next() // Role accepted, proceed
				return
			}
		}
		// Default deny for every other role
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role", "code": "FORBIDDEN"})
	}
}
