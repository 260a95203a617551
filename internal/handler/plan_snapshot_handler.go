package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/response"
)

type planSnapshotManager interface {
	Create(ctx context.Context, req dto.CreatePlanSnapshotRequest, actor string) (*models.PlanSnapshot, error)
	List(ctx context.Context, query dto.PlanSnapshotQuery) ([]models.PlanSnapshot, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.PlanSnapshot, error)
}

// PlanSnapshotHandler exposes versioned plan snapshots.
type PlanSnapshotHandler struct {
	snapshots planSnapshotManager
}

// NewPlanSnapshotHandler constructs the handler.
func NewPlanSnapshotHandler(snapshots planSnapshotManager) *PlanSnapshotHandler {
	return &PlanSnapshotHandler{snapshots: snapshots}
}

// Create godoc
// @Summary Persist the current plan
// @Tags PlanSnapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePlanSnapshotRequest false "Horizon and note"
// @Success 201 {object} response.Envelope
// @Router /plan-snapshots [post]
func (h *PlanSnapshotHandler) Create(c *gin.Context) {
	var req dto.CreatePlanSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid snapshot payload"))
		return
	}
	snapshot, err := h.snapshots.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snapshot)
}

// List godoc
// @Summary List plan snapshots
// @Tags PlanSnapshots
// @Produce json
// @Param horizon query int false "Horizon filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /plan-snapshots [get]
func (h *PlanSnapshotHandler) List(c *gin.Context) {
	var query dto.PlanSnapshotQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	snapshots, pagination, err := h.snapshots.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, pagination)
}

// Get godoc
// @Summary Fetch a plan snapshot
// @Tags PlanSnapshots
// @Produce json
// @Param id path string true "Snapshot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plan-snapshots/{id} [get]
func (h *PlanSnapshotHandler) Get(c *gin.Context) {
	snapshot, err := h.snapshots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
