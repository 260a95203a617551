package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/exam-periods", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/exam-periods", http.StatusOK, 40*time.Millisecond)
	m.ObservePlanRun(&models.ExamPlan{Semesters: []models.SemesterPlan{
		{Violations: []models.Violation{{Code: models.ViolationBufferBefore}}},
		{},
	}}, 10*time.Millisecond)
	m.ObservePlanRun(nil, 10*time.Millisecond)
	m.ObserveExportRender("pdf", time.Millisecond)
	m.SetExportQueueDepth(3)

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snapshot.PlanRuns)
	assert.Equal(t, uint64(2), snapshot.SemestersPlanned)
	assert.Equal(t, uint64(1), snapshot.ExportsRendered)
	assert.Equal(t, 3, snapshot.ExportQueueDepth)
	assert.Positive(t, snapshot.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordExportJob("csv", models.ExportStatusFinished)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `export_jobs_total{format="csv",status="FINISHED"} 1`)
	assert.Contains(t, body, "goroutines_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObservePlanRun(nil, time.Millisecond)
	m.SetExportQueueDepth(1)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
