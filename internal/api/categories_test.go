package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"medmarket/internal/domain"
)

func TestCategoryAdminGate(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())

	admin := seedUser(t, gdb, "admin@medsupply.test", domain.RoleAdmin)
	buyer := seedUser(t, gdb, "buyer@hospital.org", domain.RoleBuyer)

	t.Run("buyer cannot create", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/admin/categories", tokenFor(t, buyer),
			map[string]any{"name": "Surgical"})
		require.Equal(t, http.StatusForbidden, w.Code)

		var count int64
		require.NoError(t, gdb.Model(&domain.Category{}).Count(&count).Error)
		require.Zero(t, count, "denied request must not write a row")
	})

	t.Run("admin creates", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/admin/categories", tokenFor(t, admin),
			map[string]any{"name": "Surgical", "description": "Surgical instruments", "icon": "scalpel"})
		require.Equal(t, http.StatusCreated, w.Code)

		var cat domain.Category
		require.NoError(t, gdb.Where("name = ?", "Surgical").First(&cat).Error)
		require.Equal(t, "scalpel", cat.Icon)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/admin/categories", tokenFor(t, admin),
			map[string]any{"name": "Surgical"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("anonymous listing works", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/categories", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		require.Len(t, body["categories"], 1)
	})
}

func TestDeleteCategoryBlockedWhileInUse(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())

	admin := seedUser(t, gdb, "admin@medsupply.test", domain.RoleAdmin)
	vendor := seedUser(t, gdb, "vendor@supplies.com", domain.RoleVendor)

	cat := domain.Category{Name: "Diagnostics"}
	require.NoError(t, gdb.Create(&cat).Error)
	product := domain.Product{
		VendorID: vendor.ID, CategoryID: cat.ID,
		Name: "Thermometer", Description: "Digital thermometer",
	}
	require.NoError(t, gdb.Create(&product).Error)

	w := doJSON(r, http.MethodDelete, "/admin/categories/1", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", decodeBody(t, w)["code"])

	// Once the product is gone the category can go too
	require.NoError(t, gdb.Delete(&product).Error)
	w = doJSON(r, http.MethodDelete, "/admin/categories/1", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
}
