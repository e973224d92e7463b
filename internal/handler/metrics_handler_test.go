package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/service"
)

func newSystemContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, "staging", nil, nil)
	h.started = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.started.Add(90 * time.Second) }

	c, w := newSystemContext("/health")
	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(90), body["uptime"])
	assert.Equal(t, "2024-03-01T09:01:30Z", body["timestamp"])
	assert.Equal(t, "staging", body["environment"])
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	h := NewMetricsHandler(nil, "test", map[string]ReadinessCheck{"database": up, "redis": up}, nil)
	c, w := newSystemContext("/ready")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"database":"up","redis":"up"}}`, w.Body.String())

	h = NewMetricsHandler(nil, "test", map[string]ReadinessCheck{"database": up, "redis": down}, nil)
	c, w = newSystemContext("/ready")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"up","redis":"down"}}`, w.Body.String())
}

func TestPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newSystemContext("/metrics")
	NewMetricsHandler(nil, "test", nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	metrics := service.NewMetricsService()
	metrics.RecordRateLimited("auth")
	c, w = newSystemContext("/metrics")
	NewMetricsHandler(metrics, "test", nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rate_limited_requests_total{group="auth"} 1`)
}
