package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medmarket/internal/api"
	"medmarket/internal/db"
	"medmarket/internal/domain"
	"medmarket/internal/mailer"
	"medmarket/internal/middleware"
	"medmarket/internal/utils"
)

const (
	testSecret    = "test-secret"
	testSetupCode = "letmein"
	testPassword  = "password123"
)

// fakeSender records outbound email instead of calling a provider.
type fakeSender struct {
	codes map[string]string // last verification code per address
	sent  int               // total emails
	fail  bool              // force send failures
}

func newFakeSender() *fakeSender {
	return &fakeSender{codes: map[string]string{}}
}

func (f *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	if f.fail {
		return mailer.ErrMissingAPIKey
	}
	f.sent++
	return nil
}

func (f *fakeSender) SendVerificationCode(ctx context.Context, to, code string) error {
	if f.fail {
		return mailer.ErrMissingAPIKey
	}
	f.sent++
	f.codes[to] = code
	return nil
}

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(db.Models()...))
	return gdb
}

// newTestRouter mirrors the production routing with caching disabled and no
// rate limiters.
func newTestRouter(t *testing.T, gdb *gorm.DB, mail mailer.Sender) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/auth/register", api.RegisterHandler(gdb, mail))
	r.POST("/auth/verify", api.VerifyHandler(gdb))
	r.POST("/auth/resend", api.ResendHandler(gdb, mail))
	r.POST("/auth/login", api.LoginHandler(gdb, testSecret))

	r.GET("/categories", api.GetCategoriesHandler(gdb, nil))
	r.GET("/products", api.ListProductsHandler(gdb, nil))
	r.GET("/products/:id", api.GetProductHandler(gdb))
	r.GET("/site-settings", api.GetSiteSettingsHandler(gdb, nil))

	authed := r.Group("/", middleware.JWTAuthMiddleware(testSecret), middleware.LoadUser(gdb))

	authed.GET("/users/me", api.GetCurrentUserHandler())
	authed.PUT("/users/me", api.UpdateCurrentUserHandler(gdb))
	authed.POST("/users/make-admin", api.MakeAdminHandler(gdb, testSetupCode))
	authed.PUT("/users/me/quotation-preference",
		middleware.RequireRole(domain.RoleVendor), api.UpdateQuotationPreferenceHandler(gdb))

	authed.GET("/notifications", api.ListNotificationsHandler(gdb))
	authed.GET("/notifications/unread-count", api.UnreadCountHandler(gdb, nil))
	authed.PUT("/notifications/:id/read", api.MarkReadHandler(gdb, nil))
	authed.PUT("/notifications/read-all", api.MarkAllReadHandler(gdb, nil))
	authed.POST("/notifications/contact-admin", api.ContactAdminHandler(gdb, nil))

	vendorOnly := middleware.RequireRole(domain.RoleVendor)
	vendorOrAdmin := middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin)
	buyerOnly := middleware.RequireRole(domain.RoleBuyer)

	authed.POST("/products", vendorOnly, api.CreateProductHandler(gdb, nil, "medsupply.test"))
	authed.PUT("/products/:id", vendorOrAdmin, api.UpdateProductHandler(gdb, nil, "medsupply.test"))
	authed.DELETE("/products/:id", vendorOrAdmin, api.DeleteProductHandler(gdb, nil))

	authed.POST("/rfqs", buyerOnly, api.CreateRFQHandler(gdb, nil))
	authed.GET("/rfqs", vendorOrAdmin, api.ListOpenRFQsHandler(gdb))
	authed.GET("/rfqs/mine", buyerOnly, api.MyRFQsHandler(gdb))
	authed.GET("/rfqs/:id", api.GetRFQHandler(gdb))
	authed.PUT("/rfqs/:id/close", buyerOnly, api.CloseRFQHandler(gdb))
	authed.GET("/rfqs/:id/export", api.ExportRFQHandler(gdb))
	authed.POST("/rfqs/:id/quotations", vendorOnly, api.SubmitQuotationHandler(gdb, nil))
	authed.POST("/quotations/:id/accept", buyerOnly, api.AcceptQuotationHandler(gdb, nil, mail))

	authed.GET("/cart", buyerOnly, api.GetCartHandler(nil))
	authed.POST("/cart/items", buyerOnly, api.AddCartItemHandler(nil))
	authed.PUT("/cart/items/:productID", buyerOnly, api.UpdateCartItemHandler(nil))
	authed.DELETE("/cart/items/:productID", buyerOnly, api.RemoveCartItemHandler(nil))
	authed.DELETE("/cart", buyerOnly, api.ClearCartHandler(nil))

	authed.GET("/orders", api.ListOrdersHandler(gdb))
	authed.PUT("/orders/:id/status", api.UpdateOrderStatusHandler(gdb, nil))
	authed.GET("/orders/export", api.ExportOrdersHandler(gdb))
	authed.GET("/orders/:id/export", api.ExportOrderHandler(gdb))

	authed.POST("/group-buys", vendorOnly, api.CreateGroupBuyHandler(gdb))
	authed.GET("/group-buys", api.ListGroupBuysHandler(gdb))
	authed.POST("/group-buys/:id/pledges", buyerOnly, api.PledgeHandler(gdb, nil))
	authed.PUT("/group-buys/:id/cancel", vendorOrAdmin, api.CancelGroupBuyHandler(gdb))

	adminGroup := r.Group("/admin",
		middleware.JWTAuthMiddleware(testSecret),
		middleware.LoadUser(gdb),
		middleware.RequireRole(domain.RoleAdmin))
	adminGroup.POST("/categories", api.CreateCategoryHandler(gdb, nil))
	adminGroup.PUT("/categories/:id", api.UpdateCategoryHandler(gdb, nil))
	adminGroup.DELETE("/categories/:id", api.DeleteCategoryHandler(gdb, nil))
	adminGroup.PUT("/site-settings", api.UpdateSiteSettingsHandler(gdb, nil))
	adminGroup.PUT("/site-settings/:key", api.UpdateSiteSettingHandler(gdb, nil))
	adminGroup.POST("/site-settings/reset", api.ResetSiteSettingsHandler(gdb, nil))

	return r
}

// seedUser inserts a verified account with the shared test password.
func seedUser(t *testing.T, gdb *gorm.DB, email string, role domain.Role) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Email:       email,
		Password:    string(hash),
		CompanyName: "Test " + string(role),
		Role:        role,
		Verified:    true,
		Status:      "active",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

// tokenFor mints a session token for a seeded user.
func tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, testSecret)
	require.NoError(t, err)
	return token
}

// doJSON performs one request against the router. An empty token leaves the
// Authorization header off.
func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response into a map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
