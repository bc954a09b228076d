package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"medmarket/internal/domain"
)

func TestCurrentUserProfile(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	buyer := seedUser(t, gdb, "buyer@hospital.org", domain.RoleBuyer)

	t.Run("fetch own profile", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/users/me", tokenFor(t, buyer), nil)
		require.Equal(t, http.StatusOK, w.Code)
		user := decodeBody(t, w)["user"].(map[string]any)
		require.Equal(t, "buyer@hospital.org", user["email"])
		require.NotContains(t, user, "password", "hash must never serialize")
	})

	t.Run("partial update touches only given fields", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me", tokenFor(t, buyer),
			map[string]any{"phone": "+1-555-0100"})
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.User
		require.NoError(t, gdb.First(&got, buyer.ID).Error)
		require.Equal(t, "+1-555-0100", got.Phone)
		require.Equal(t, buyer.CompanyName, got.CompanyName)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me", tokenFor(t, buyer), map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no token is unauthenticated", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestQuotationPreference(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	vendor := seedUser(t, gdb, "vendor@supplies.com", domain.RoleVendor)
	buyer := seedUser(t, gdb, "buyer@hospital.org", domain.RoleBuyer)

	t.Run("vendor sets a valid preference", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me/quotation-preference", tokenFor(t, vendor),
			map[string]any{"preference": domain.QuotationPrefEmail})
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.User
		require.NoError(t, gdb.First(&got, vendor.ID).Error)
		require.Equal(t, domain.QuotationPrefEmail, got.QuotationPreference)
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me/quotation-preference", tokenFor(t, vendor),
			map[string]any{"preference": "carrier_pigeon"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("buyer cannot set a preference", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/users/me/quotation-preference", tokenFor(t, buyer),
			map[string]any{"preference": domain.QuotationPrefEmail})
		require.Equal(t, http.StatusForbidden, w.Code)

		var got domain.User
		require.NoError(t, gdb.First(&got, buyer.ID).Error)
		require.Equal(t, buyer.QuotationPreference, got.QuotationPreference, "denied request leaves row unchanged")
	})
}

func TestMakeAdmin(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	buyer := seedUser(t, gdb, "buyer@hospital.org", domain.RoleBuyer)

	t.Run("wrong setup code denied", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/make-admin", tokenFor(t, buyer),
			map[string]any{"setup_code": "guess"})
		require.Equal(t, http.StatusForbidden, w.Code)

		var got domain.User
		require.NoError(t, gdb.First(&got, buyer.ID).Error)
		require.Equal(t, domain.RoleBuyer, got.Role)
	})

	t.Run("matching setup code elevates", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/users/make-admin", tokenFor(t, buyer),
			map[string]any{"setup_code": testSetupCode})
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.User
		require.NoError(t, gdb.First(&got, buyer.ID).Error)
		require.Equal(t, domain.RoleAdmin, got.Role)
	})
}
