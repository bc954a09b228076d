package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"medmarket/internal/domain"
)

func settingsMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	settings, ok := body["settings"].(map[string]any)
	require.True(t, ok)
	return settings
}

func TestSiteSettingsMerge(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	admin := seedUser(t, gdb, "admin@medsupply.test", domain.RoleAdmin)

	t.Run("empty override set yields exactly the defaults", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/site-settings", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		settings := settingsMap(t, decodeBody(t, w))
		require.Len(t, settings, len(domain.DefaultSiteSettings))
		for key, value := range domain.DefaultSiteSettings {
			require.Equal(t, value, settings[key])
		}
	})

	t.Run("override replaces one key, the rest keep defaults", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/admin/site-settings/site_name", tokenFor(t, admin),
			map[string]any{"value": "Mercy Medical Exchange"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/site-settings", "", nil)
		settings := settingsMap(t, decodeBody(t, w))
		require.Equal(t, "Mercy Medical Exchange", settings["site_name"])
		require.Len(t, settings, len(domain.DefaultSiteSettings), "merge stays total")
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/admin/site-settings/not_a_setting", tokenFor(t, admin),
			map[string]any{"value": "x"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "VALIDATION_ERROR", decodeBody(t, w)["code"])
	})

	t.Run("bulk update is all or nothing", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/admin/site-settings", tokenFor(t, admin),
			map[string]any{"support_email": "help@mercy.org", "bogus_key": "x"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(r, http.MethodGet, "/site-settings", "", nil)
		settings := settingsMap(t, decodeBody(t, w))
		require.Equal(t, domain.DefaultSiteSettings["support_email"], settings["support_email"],
			"rejected bulk update must not apply partially")
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/admin/site-settings/reset", tokenFor(t, admin), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, gdb.Model(&domain.SiteSetting{}).Count(&count).Error)
		require.Zero(t, count)

		w = doJSON(r, http.MethodGet, "/site-settings", "", nil)
		settings := settingsMap(t, decodeBody(t, w))
		require.Equal(t, domain.DefaultSiteSettings["site_name"], settings["site_name"])
	})
}

func TestSiteSettingsAdminGate(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	vendor := seedUser(t, gdb, "vendor@supplies.com", domain.RoleVendor)

	w := doJSON(r, http.MethodPut, "/admin/site-settings/site_name", tokenFor(t, vendor),
		map[string]any{"value": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, gdb.Model(&domain.SiteSetting{}).Count(&count).Error)
	require.Zero(t, count)
}
