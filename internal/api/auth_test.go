package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medmarket/internal/domain"
)

func TestRegisterAndVerify(t *testing.T) {
	gdb := newTestDB(t)
	mail := newFakeSender()
	r := newTestRouter(t, gdb, mail)

	w := doJSON(r, http.MethodPost, "/auth/register", "", map[string]any{
		"email":        "Buyer@Hospital.org",
		"password":     testPassword,
		"company_name": "General Hospital",
		"role":         "buyer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user domain.User
	require.NoError(t, gdb.Where("email = ?", "buyer@hospital.org").First(&user).Error)
	require.False(t, user.Verified)

	code, ok := mail.codes["buyer@hospital.org"]
	require.True(t, ok, "verification email should carry a code")
	require.Len(t, code, 6)

	t.Run("wrong code rejected without mutating state", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
			"email": "buyer@hospital.org", "code": "000000",
		})
		if code == "000000" {
			t.Skip("collided with the real code")
		}
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NoError(t, gdb.First(&user, user.ID).Error)
		require.False(t, user.Verified)
	})

	t.Run("correct code verifies exactly once", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
			"email": "buyer@hospital.org", "code": code,
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, gdb.First(&user, user.ID).Error)
		require.True(t, user.Verified)

		var vc domain.VerificationCode
		require.NoError(t, gdb.Where("user_id = ?", user.ID).Order("created_at desc").First(&vc).Error)
		require.True(t, vc.Verified)

		// A second attempt with the same code fails
		w = doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
			"email": "buyer@hospital.org", "code": code,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerifyExpiredCode(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())

	user := seedUser(t, gdb, "late@hospital.org", domain.RoleBuyer)
	require.NoError(t, gdb.Model(&user).Update("verified", false).Error)
	vc := domain.VerificationCode{
		UserID:    user.ID,
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute).UnixMilli(), // Already past
	}
	require.NoError(t, gdb.Create(&vc).Error)

	w := doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
		"email": "late@hospital.org", "code": "123456",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", decodeBody(t, w)["code"])

	require.NoError(t, gdb.First(&user, user.ID).Error)
	require.False(t, user.Verified)
}

func TestVerifyUsesMostRecentCode(t *testing.T) {
	gdb := newTestDB(t)
	mail := newFakeSender()
	r := newTestRouter(t, gdb, mail)

	w := doJSON(r, http.MethodPost, "/auth/register", "", map[string]any{
		"email": "vendor@supplies.com", "password": testPassword, "role": "vendor",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	firstCode := mail.codes["vendor@supplies.com"]

	// Resend supersedes the first code
	w = doJSON(r, http.MethodPost, "/auth/resend", "", map[string]any{"email": "vendor@supplies.com"})
	require.Equal(t, http.StatusOK, w.Code)
	secondCode := mail.codes["vendor@supplies.com"]

	if firstCode != secondCode {
		w = doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
			"email": "vendor@supplies.com", "code": firstCode,
		})
		require.Equal(t, http.StatusBadRequest, w.Code, "superseded code must not verify")
	}
	w = doJSON(r, http.MethodPost, "/auth/verify", "", map[string]any{
		"email": "vendor@supplies.com", "code": secondCode,
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())

	t.Run("admin role not registrable", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/register", "", map[string]any{
			"email": "a@b.co", "password": testPassword, "role": "admin",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/register", "", map[string]any{
			"email": "a@b.co", "password": "short", "role": "buyer",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		seedUser(t, gdb, "dup@b.co", domain.RoleBuyer)
		w := doJSON(r, http.MethodPost, "/auth/register", "", map[string]any{
			"email": "dup@b.co", "password": testPassword, "role": "buyer",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failed email send surfaces as external error", func(t *testing.T) {
		failing := newFakeSender()
		failing.fail = true
		r2 := newTestRouter(t, newTestDB(t), failing)
		w := doJSON(r2, http.MethodPost, "/auth/register", "", map[string]any{
			"email": "x@y.co", "password": testPassword, "role": "buyer",
		})
		require.Equal(t, http.StatusBadGateway, w.Code)
		require.Equal(t, "EXTERNAL_SERVICE_ERROR", decodeBody(t, w)["code"])
	})
}

func TestLogin(t *testing.T) {
	gdb := newTestDB(t)
	r := newTestRouter(t, gdb, newFakeSender())
	user := seedUser(t, gdb, "login@hospital.org", domain.RoleBuyer)

	t.Run("verified user gets a token", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/login", "", map[string]any{
			"email": "login@hospital.org", "password": testPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, decodeBody(t, w)["token"])
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/auth/login", "", map[string]any{
			"email": "login@hospital.org", "password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unverified user is forbidden", func(t *testing.T) {
		require.NoError(t, gdb.Model(&user).Update("verified", false).Error)
		defer gdb.Model(&user).Update("verified", true)
		w := doJSON(r, http.MethodPost, "/auth/login", "", map[string]any{
			"email": "login@hospital.org", "password": testPassword,
		})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "FORBIDDEN", decodeBody(t, w)["code"])
	})
}
