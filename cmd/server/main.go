package main

import (
	"context"                       // context package is needed for Redis operations
	"log"                           // log package is needed for logging
	"medmarket/internal/api"        // Custom package for API handlers
	"medmarket/internal/config"     // Custom package for configuration
	"medmarket/internal/domain"     // Domain models for role constants
	"medmarket/internal/mailer"     // Transactional email client
	"medmarket/internal/middleware" // Custom package for middleware
	"medmarket/internal/vision"     // Catalog scan client

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// External collaborators
	mail := mailer.New(cfg.EmailAPIKey, cfg.EmailBaseURL, cfg.EmailFrom)
	scanner := vision.New(cfg.VisionAPIKey, cfg.VisionBaseURL, cfg.VisionModel)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes, rate limited against brute force
	auth := r.Group("/auth", middleware.RateLimit(middleware.StrictLimit))
	auth.POST("/register", api.RegisterHandler(db, mail)) // Registration endpoint
	auth.POST("/verify", api.VerifyHandler(db))           // Code verification endpoint
	auth.POST("/resend", api.ResendHandler(db, mail))     // Code resend endpoint
	auth.POST("/login", api.LoginHandler(db, cfg.JWTSecret))

	// Public reads
	r.GET("/categories", api.GetCategoriesHandler(db, rdb))
	r.GET("/products", api.ListProductsHandler(db, rdb))
	r.GET("/products/:id", api.GetProductHandler(db))
	r.GET("/site-settings", api.GetSiteSettingsHandler(db, rdb))

	// Everything below requires a resolved identity
	authed := r.Group("/", middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.LoadUser(db))

	// Profile
	authed.GET("/users/me", api.GetCurrentUserHandler())
	authed.PUT("/users/me", api.UpdateCurrentUserHandler(db))
	authed.POST("/users/make-admin", api.MakeAdminHandler(db, cfg.AdminSetupCode))
	authed.PUT("/users/me/quotation-preference",
		middleware.RequireRole(domain.RoleVendor), api.UpdateQuotationPreferenceHandler(db))

	// Notifications
	authed.GET("/notifications", api.ListNotificationsHandler(db))
	authed.GET("/notifications/unread-count", api.UnreadCountHandler(db, rdb))
	authed.PUT("/notifications/:id/read", api.MarkReadHandler(db, rdb))
	authed.PUT("/notifications/read-all", api.MarkAllReadHandler(db, rdb))
	authed.POST("/notifications/contact-admin", api.ContactAdminHandler(db, rdb))

	// Vendor catalog management
	vendorOnly := middleware.RequireRole(domain.RoleVendor)
	vendorOrAdmin := middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin)
	authed.POST("/products", vendorOnly, api.CreateProductHandler(db, rdb, cfg.CDNHost))
	authed.PUT("/products/:id", vendorOrAdmin, api.UpdateProductHandler(db, rdb, cfg.CDNHost))
	authed.DELETE("/products/:id", vendorOrAdmin, api.DeleteProductHandler(db, rdb))

	// Catalog scan, expensive external call behind the strict limiter
	authed.POST("/catalog/scan", vendorOrAdmin,
		middleware.RateLimit(middleware.StrictLimit), api.ScanCatalogHandler(scanner))

	// RFQ lifecycle
	buyerOnly := middleware.RequireRole(domain.RoleBuyer)
	authed.POST("/rfqs", buyerOnly, api.CreateRFQHandler(db, rdb))
	authed.GET("/rfqs", vendorOrAdmin, api.ListOpenRFQsHandler(db))
	authed.GET("/rfqs/mine", buyerOnly, api.MyRFQsHandler(db))
	authed.GET("/rfqs/:id", api.GetRFQHandler(db))
	authed.PUT("/rfqs/:id/close", buyerOnly, api.CloseRFQHandler(db))
	authed.GET("/rfqs/:id/export", api.ExportRFQHandler(db))
	authed.POST("/rfqs/:id/quotations", vendorOnly, api.SubmitQuotationHandler(db, rdb))
	authed.POST("/quotations/:id/accept", buyerOnly, api.AcceptQuotationHandler(db, rdb, mail))

	// Orders
	authed.GET("/orders", api.ListOrdersHandler(db))
	authed.PUT("/orders/:id/status", api.UpdateOrderStatusHandler(db, rdb))
	authed.GET("/orders/export", api.ExportOrdersHandler(db))
	authed.GET("/orders/:id/export", api.ExportOrderHandler(db))

	// RFQ cart, buyers only
	authed.GET("/cart", buyerOnly, api.GetCartHandler(rdb))
	authed.POST("/cart/items", buyerOnly, api.AddCartItemHandler(rdb))
	authed.PUT("/cart/items/:productID", buyerOnly, api.UpdateCartItemHandler(rdb))
	authed.DELETE("/cart/items/:productID", buyerOnly, api.RemoveCartItemHandler(rdb))
	authed.DELETE("/cart", buyerOnly, api.ClearCartHandler(rdb))

	// Group buys
	authed.POST("/group-buys", vendorOnly, api.CreateGroupBuyHandler(db))
	authed.GET("/group-buys", api.ListGroupBuysHandler(db))
	authed.POST("/group-buys/:id/pledges", buyerOnly, api.PledgeHandler(db, rdb))
	authed.PUT("/group-buys/:id/cancel", vendorOrAdmin, api.CancelGroupBuyHandler(db))

	// Admin-only management
	adminGroup := r.Group("/admin",
		middleware.JWTAuthMiddleware(cfg.JWTSecret),
		middleware.LoadUser(db),
		middleware.RequireRole(domain.RoleAdmin))
	adminGroup.POST("/categories", api.CreateCategoryHandler(db, rdb))
	adminGroup.PUT("/categories/:id", api.UpdateCategoryHandler(db, rdb))
	adminGroup.DELETE("/categories/:id", api.DeleteCategoryHandler(db, rdb))
	adminGroup.PUT("/site-settings", api.UpdateSiteSettingsHandler(db, rdb))
	adminGroup.PUT("/site-settings/:key", api.UpdateSiteSettingHandler(db, rdb))
	adminGroup.POST("/site-settings/reset", api.ResetSiteSettingsHandler(db, rdb))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
