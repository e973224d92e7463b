package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricValue returns the counter, gauge or histogram sample count for the series matching labels.
func metricValue(t *testing.T, m *MetricsService, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue series
				}
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestMetricsServiceRecordsAssistantSeries(t *testing.T) {
	m := NewMetricsService()
	m.RecordIntent("navigation", "hi")
	m.RecordIntent("navigation", "hi")
	m.RecordVoiceLookup(voiceHit)
	m.ObserveExternalCall("gemini", errors.New("quota"), 120*time.Millisecond)
	m.ObserveDBQuery("department_resolve", time.Millisecond)
	m.RecordRateLimited("ai")
	m.ObserveHTTPRequest("POST", "/api/ai/query", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, metricValue(t, m, "assistant_intents_total", map[string]string{"intent": "navigation", "lang": "hi"}))
	assert.Equal(t, 1.0, metricValue(t, m, "voice_cache_lookups_total", map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, metricValue(t, m, "external_call_duration_seconds", map[string]string{"client": "gemini", "outcome": "error"}))
	assert.Equal(t, 1.0, metricValue(t, m, "db_query_duration_seconds", map[string]string{"query": "department_resolve"}))
	assert.Equal(t, 1.0, metricValue(t, m, "rate_limited_requests_total", map[string]string{"group": "ai"}))
	assert.Equal(t, 1.0, metricValue(t, m, "http_requests_total", map[string]string{"path": "/api/ai/query", "status": "200"}))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordIntent("greeting", "en")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `assistant_intents_total{intent="greeting",lang="en"} 1`)

	var nilMetrics *MetricsService
	nilMetrics.RecordIntent("greeting", "en")
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
