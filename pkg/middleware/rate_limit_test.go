package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gogotex/cocktails/pkg/metrics"
)

func get(r *gin.Engine, path, remote string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/ok", ""))
	require.Equal(t, http.StatusOK, get(r, "/ok", ""))
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/limited", ""))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/limited", ""))

	// one token every 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, get(r, "/limited", ""))
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/u", "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/u", "10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, get(r, "/u", "10.0.0.2:1234"))
}
