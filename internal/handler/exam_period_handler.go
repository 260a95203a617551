package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/middleware"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/service"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/response"
)

type examPlanProvider interface {
	GenerateWithCacheInfo(ctx context.Context, query dto.ExamPlanQuery) (*models.ExamPlan, bool, error)
	Holidays(year int) (*dto.HolidayResponse, error)
}

type planRenderer interface {
	Render(ctx context.Context, rawFormat string, query dto.ExamPlanQuery) (*service.ExportArtifact, error)
}

// ExamPeriodHandler serves generated exam plans and the holiday calendar.
type ExamPeriodHandler struct {
	plans    examPlanProvider
	renderer planRenderer
}

// NewExamPeriodHandler constructs the handler.
func NewExamPeriodHandler(plans examPlanProvider, renderer planRenderer) *ExamPeriodHandler {
	return &ExamPeriodHandler{plans: plans, renderer: renderer}
}

// Get godoc
// @Summary Generate exam periods
// @Description Plans every known and extrapolated semester up to the horizon.
// @Tags ExamPeriods
// @Produce json
// @Param horizon query int false "Years beyond the current year"
// @Param semester query string false "Single semester, e.g. Wintersemester 2025/26"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /exam-periods [get]
func (h *ExamPeriodHandler) Get(c *gin.Context) {
	var query dto.ExamPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	plan, hit, err := h.plans.GenerateWithCacheInfo(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetMeta(c, "semesters", len(plan.Semesters))
	response.JSON(c, http.StatusOK, plan, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download exam periods
// @Description Renders the plan synchronously as md, ics, pdf, csv or xlsx.
// @Tags ExamPeriods
// @Produce octet-stream
// @Param format query string true "md|ics|pdf|csv|xlsx"
// @Param horizon query int false "Years beyond the current year"
// @Param semester query string false "Single semester"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /exam-periods/export [get]
func (h *ExamPeriodHandler) Export(c *gin.Context) {
	var query dto.ExamPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	format := c.Query("format")
	if format == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format required"))
		return
	}
	artifact, err := h.renderer.Render(c.Request.Context(), format, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Data)
}

// Holidays godoc
// @Summary NRW public holidays
// @Description Weekday holidays of a year with their German names.
// @Tags Holidays
// @Produce json
// @Param year path int true "Calendar year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /holidays/{year} [get]
func (h *ExamPeriodHandler) Holidays(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
		return
	}
	holidays, err := h.plans.Holidays(year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}
