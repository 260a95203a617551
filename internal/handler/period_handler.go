package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/response"
)

type periodManager interface {
	List(ctx context.Context) ([]models.SemesterPeriod, error)
	Upsert(ctx context.Context, req dto.UpsertPeriodRequest) (*models.SemesterPeriod, error)
	Sync(ctx context.Context) (*dto.PeriodSyncResponse, error)
}

// PeriodHandler manages stored lecture periods and project weeks.
type PeriodHandler struct {
	periods periodManager
}

// NewPeriodHandler constructs the handler.
func NewPeriodHandler(periods periodManager) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// List godoc
// @Summary List stored semesters
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.periods.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Upsert godoc
// @Summary Store a semester
// @Tags Periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpsertPeriodRequest true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /periods [put]
func (h *PeriodHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid period payload"))
		return
	}
	period, err := h.periods.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Sync godoc
// @Summary Scrape and store semesters
// @Tags Periods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /periods/sync [post]
func (h *PeriodHandler) Sync(c *gin.Context) {
	result, err := h.periods.Sync(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
