package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/service"
	"github.com/noah-isme/campus-connect-api/pkg/config"
)

func newLimitedRouter(l *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/ai/query", l.Handler(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"answer": "ok"})
	})
	return router
}

func sendFrom(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/query", nil)
	req.RemoteAddr = ip + ":40000"
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	metrics := service.NewMetricsService()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter("ai", config.RateLimitRule{Max: 2, Window: time.Minute}, RateLimitAIMessage, metrics)
	limiter.now = func() time.Time { return now }
	router := newLimitedRouter(limiter)

	first := sendFrom(router, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, sendFrom(router, "10.0.0.1").Code)

	blocked := sendFrom(router, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.JSONEq(t, `{"answer":"Too many AI queries. Please slow down."}`, blocked.Body.String())
	assert.Equal(t, "30", blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, sendFrom(router, "10.0.0.2").Code)

	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, sendFrom(router, "10.0.0.1").Code)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `rate_limited_requests_total{group="ai"} 1`)
}

func TestRateLimiterWithoutBudgetPassesThrough(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter("api", config.RateLimitRule{}, "", nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, sendFrom(router, "10.0.0.1").Code)
	}
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter("auth", config.RateLimitRule{Max: 5, Window: time.Minute}, RateLimitAuthMessage, nil)
	limiter.now = func() time.Time { return now }
	router := newLimitedRouter(limiter)

	sendFrom(router, "10.0.0.1")
	now = now.Add(2 * time.Minute)
	sendFrom(router, "10.0.0.2")
	assert.Equal(t, 0, limiter.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, limiter.Sweep())
	assert.Len(t, limiter.visitors, 1)
}
