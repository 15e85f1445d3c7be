package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-solver/internal/dto"
	"github.com/campusops/timetable-solver/internal/models"
	appErrors "github.com/campusops/timetable-solver/pkg/errors"
	"github.com/campusops/timetable-solver/pkg/response"
)

type solver interface {
	Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error)
	ExportReport(ctx context.Context, proposalID string, format models.ReportFormat) (*dto.ReportResponse, error)
}

// SolverHandler exposes the solve and report-export endpoints.
type SolverHandler struct {
	service solver
}

// NewSolverHandler constructs the handler. Accepts the solver interface
// directly (rather than a concrete *service.SolverService) so tests can
// supply a fake without standing up the real service's dependencies.
func NewSolverHandler(svc solver) *SolverHandler {
	return &SolverHandler{service: svc}
}

// Solve godoc
// @Summary Solve a timetabling problem instance
// @Tags Solver
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest true "Problem instance"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /solve [post]
func (h *SolverHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve request payload"))
		return
	}

	result, err := h.service.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Report godoc
// @Summary Export a solved proposal as CSV or PDF
// @Tags Solver
// @Produce json
// @Param id path string true "Proposal ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /solve/{id}/report [get]
func (h *SolverHandler) Report(c *gin.Context) {
	proposalID := c.Param("id")
	if proposalID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "proposal id required"))
		return
	}

	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	result, err := h.service.ExportReport(c.Request.Context(), proposalID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
