package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/handler"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/planner"
	"github.com/noah-isme/exam-period-api/internal/service"
	"github.com/noah-isme/exam-period-api/internal/source"
	"github.com/noah-isme/exam-period-api/pkg/config"
)

func newTestEngine(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clock := func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	rules, err := config.LoadCalendar("")
	require.NoError(t, err)
	periods := source.NewPeriods()
	periods.Lectures["Sommersemester 2025"] = models.Period{Start: planner.Date(2025, time.March, 17), End: planner.Date(2025, time.July, 11)}
	periods.HIPs["Sommersemester 2025"] = models.Period{Start: planner.Date(2025, time.May, 12), End: planner.Date(2025, time.May, 16)}

	metrics := service.NewMetricsService()
	p := service.BuildPlanner(config.PlannerConfig{ShiftMin: -2, ShiftMax: 2, LastBlockOffsets: []int{0, 1}, BufferMin: 6, BufferMax: 10}, rules, clock)
	plans := service.NewExamPlanService(source.Static{Periods: periods}, p, rules, nil, metrics, nil, service.ExamPlanConfig{HorizonYears: 1}, zap.NewNop(), clock)
	exporter := service.NewExportService(plans, nil, nil, nil, metrics, service.ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop())
	auth := service.NewAuthService(nil, zap.NewNop(), service.AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "test"})

	engine := Setup(Options{APIPrefix: "/api/v1/", Metrics: metrics, Auth: auth}, Handlers{
		ExamPeriods: handler.NewExamPeriodHandler(plans, exporter),
		Periods:     handler.NewPeriodHandler(service.NewPeriodService(nil, nil, plans, nil, zap.NewNop())),
		System:      handler.NewMetricsHandler(metrics, nil),
	})
	return engine, auth
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRouterServesPlanAndHolidays(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/exam-periods?semester=Sommersemester%202025", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache_hit":false`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/holidays/2025", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tag der Deutschen Einheit")

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/exam-periods/export?format=md", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "| Prüfungswoche | Zeitraum | Feiertage | Anmerkungen |")
}

func TestRouterGuardsAdminRoutes(t *testing.T) {
	engine, auth := newTestEngine(t)
	body := []byte(`{"name":"Sommersemester 2025","lecture_start":"2025-03-17","lecture_end":"2025-07-11"}`)

	rec := serve(engine, httptest.NewRequest(http.MethodPut, "/api/v1/periods", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	viewer, err := auth.IssueToken(dto.TokenRequest{Subject: "viewer", Role: models.RoleViewer})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/periods", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+viewer.AccessToken)
	rec = serve(engine, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterHealthAndUnmountedRoutes(t *testing.T) {
	engine, _ := newTestEngine(t)

	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/ready", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/plan-snapshots", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil)).Code)
}
