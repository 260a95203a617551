package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/middleware"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/service"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/export"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type examPlanProviderMock struct {
	query    dto.ExamPlanQuery
	plan     *models.ExamPlan
	hit      bool
	err      error
	holidays *dto.HolidayResponse
	year     int
}

func (m *examPlanProviderMock) GenerateWithCacheInfo(_ context.Context, query dto.ExamPlanQuery) (*models.ExamPlan, bool, error) {
	m.query = query
	return m.plan, m.hit, m.err
}

func (m *examPlanProviderMock) Holidays(year int) (*dto.HolidayResponse, error) {
	m.year = year
	if m.holidays == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	return m.holidays, nil
}

type rendererMock struct {
	format   string
	artifact *service.ExportArtifact
	err      error
}

func (m *rendererMock) Render(_ context.Context, rawFormat string, _ dto.ExamPlanQuery) (*service.ExportArtifact, error) {
	m.format = rawFormat
	return m.artifact, m.err
}

func TestExamPeriodHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	plans := &examPlanProviderMock{
		plan: &models.ExamPlan{HorizonYears: 2, Semesters: []models.SemesterPlan{{Name: "Sommersemester 2025"}}},
		hit:  true,
	}
	h := NewExamPeriodHandler(plans, nil)

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/exam-periods", h.Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exam-periods?horizon=2&semester=SoSe%202025", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, plans.query.HorizonYears)
	assert.Equal(t, 2, *plans.query.HorizonYears)
	assert.Equal(t, "SoSe 2025", plans.query.Semester)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, float64(1), env.Meta["semesters"])
	var plan models.ExamPlan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, "Sommersemester 2025", plan.Semesters[0].Name)
}

func TestExamPeriodHandlerGetErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExamPeriodHandler(&examPlanProviderMock{err: appErrors.Clone(appErrors.ErrSourceUnavailable, "down")}, nil)

	c, w := newGinContext(http.MethodGet, "/exam-periods", nil)
	h.Get(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	c, w = newGinContext(http.MethodGet, "/exam-periods?horizon=abc", nil)
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExamPeriodHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	renderer := &rendererMock{artifact: &service.ExportArtifact{
		Format:      export.FormatICS,
		Filename:    "pruefungszeitraeume_alle_2j_20250601.ics",
		ContentType: export.FormatICS.ContentType(),
		Data:        []byte("BEGIN:VCALENDAR"),
	}}
	h := NewExamPeriodHandler(&examPlanProviderMock{}, renderer)

	c, w := newGinContext(http.MethodGet, "/exam-periods/export?format=ics", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ics", renderer.format)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pruefungszeitraeume_alle_2j_20250601.ics")
	assert.Equal(t, "BEGIN:VCALENDAR", w.Body.String())

	c, w = newGinContext(http.MethodGet, "/exam-periods/export", nil)
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExamPeriodHandlerHolidays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	plans := &examPlanProviderMock{holidays: &dto.HolidayResponse{Year: 2025, Holidays: []dto.HolidayEntry{
		{Date: "2025-01-01", Weekday: "Mi", Name: "Neujahr"},
	}}}
	h := NewExamPeriodHandler(plans, nil)

	c, w := newGinContext(http.MethodGet, "/holidays/2025", nil)
	c.Params = gin.Params{{Key: "year", Value: "2025"}}
	h.Holidays(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2025, plans.year)

	c, w = newGinContext(http.MethodGet, "/holidays/abc", nil)
	c.Params = gin.Params{{Key: "year", Value: "abc"}}
	h.Holidays(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
