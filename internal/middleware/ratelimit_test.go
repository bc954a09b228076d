package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func limitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitBurstThenReject(t *testing.T) {
	r := limitedRouter(RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"), "request %d within burst", i+1)
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1"))
}

func TestRateLimitIsPerIP(t *testing.T) {
	r := limitedRouter(RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1"))
	// A different client still has its own budget
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.2"))
}

func TestRateLimitRefills(t *testing.T) {
	// 10 requests/second so a token returns within the test's patience
	r := limitedRouter(RateLimitConfig{RequestsPerWindow: 10, Window: time.Second, Burst: 1})

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1"))
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
}
