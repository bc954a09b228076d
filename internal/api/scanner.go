package api

import (
	"net/http" // HTTP status codes

	"medmarket/internal/vision" // Catalog image extraction

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ScanRequest points at a catalog image.
type ScanRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}

// ScanCatalogHandler sends the image to the vision model and returns the
// validated product list. Every failure mode of the scan (missing key, empty
// response, unparsable or non-conforming content) surfaces as one external
// service error.
func ScanCatalogHandler(scanner *vision.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errPayload(CodeUnauthenticated, "Unauthorized"))
			return
		}
		var req ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errPayload(CodeValidation, "Image URL is required"))
			return
		}
		products, err := scanner.ScanCatalogImage(c.Request.Context(), req.ImageURL)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Catalog scan failed")
			c.JSON(http.StatusBadGateway, errPayload(CodeExternal, err.Error()))
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"products": len(products),
		}).Info("Catalog scanned")
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
