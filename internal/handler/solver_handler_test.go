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

	"github.com/campusops/timetable-solver/internal/dto"
	"github.com/campusops/timetable-solver/internal/models"
	appErrors "github.com/campusops/timetable-solver/pkg/errors"
	"github.com/campusops/timetable-solver/pkg/response"
)

type fakeSolver struct {
	solveResp  *dto.SolveResponse
	solveErr   error
	reportResp *dto.ReportResponse
	reportErr  error
	lastFormat models.ReportFormat
}

func (f *fakeSolver) Solve(context.Context, dto.SolveRequest) (*dto.SolveResponse, error) {
	return f.solveResp, f.solveErr
}

func (f *fakeSolver) ExportReport(_ context.Context, _ string, format models.ReportFormat) (*dto.ReportResponse, error) {
	f.lastFormat = format
	return f.reportResp, f.reportErr
}

func TestSolverHandlerSolveRejectsInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSolverHandler(&fakeSolver{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Solve(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolverHandlerSolveSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSolverHandler(&fakeSolver{
		solveResp: &dto.SolveResponse{ProposalID: "prop-1", Cost: 0, Happiness: 1000},
	})

	body, err := json.Marshal(dto.SolveRequest{
		Professors: []dto.ProfessorInput{{Name: "Prof A"}},
		Rooms:      []dto.RoomInput{{Name: "Room 1"}},
		TimeSlots:  []dto.TimeSlotInput{{SlotID: 1, Day: "MONDAY"}},
		Courses:    []dto.CourseInput{{Name: "Algebra"}},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Solve(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}

func TestSolverHandlerReportRejectsBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSolverHandler(&fakeSolver{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/solve/prop-1/report?format=xml", nil)
	c.Params = gin.Params{{Key: "id", Value: "prop-1"}}

	handler.Report(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolverHandlerReportSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeSolver{reportResp: &dto.ReportResponse{ProposalID: "prop-1", Format: "csv", DownloadURL: "/api/v1/export/tok"}}
	handler := NewSolverHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/solve/prop-1/report", nil)
	c.Params = gin.Params{{Key: "id", Value: "prop-1"}}

	handler.Report(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReportFormatCSV, fake.lastFormat)
}

func TestSolverHandlerReportPropagatesNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSolverHandler(&fakeSolver{reportErr: appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/solve/missing/report", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Report(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
