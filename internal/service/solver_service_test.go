package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-solver/internal/dto"
	"github.com/campusops/timetable-solver/internal/models"
	appErrors "github.com/campusops/timetable-solver/pkg/errors"
)

func fixedSeedSource(seed int64) SeedSource {
	return func() int64 { return seed }
}

func trivialSolveRequest() dto.SolveRequest {
	return dto.SolveRequest{
		Professors: []dto.ProfessorInput{{Name: "Prof A"}},
		Rooms:      []dto.RoomInput{{Name: "Room 1", Capacity: 30}},
		TimeSlots: []dto.TimeSlotInput{
			{SlotID: 1, Day: "MONDAY", StartTime: "08:00", EndTime: "09:00"},
			{SlotID: 2, Day: "MONDAY", StartTime: "09:00", EndTime: "10:00"},
		},
		Courses: []dto.CourseInput{
			{Name: "Algebra", Enrollment: 20, Professor: "Prof A", Department: "Math"},
		},
	}
}

func newTestSolverService(t *testing.T) *SolverService {
	t.Helper()
	svc := NewSolverService(nil, nil, nil, nil, nil, nil, fixedSeedSource(42), nil, nil, SolverConfig{})
	t.Cleanup(svc.Close)
	return svc
}

func TestSolverServiceSolveIsDeterministicForAFixedSeed(t *testing.T) {
	svc := newTestSolverService(t)
	req := trivialSolveRequest()
	seed := int64(7)
	req.Seed = &seed

	first, err := svc.Solve(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Cost, second.Cost)
	assert.Equal(t, first.Happiness, second.Happiness)
	assert.Equal(t, first.Schedule, second.Schedule)
	assert.NotEqual(t, first.ProposalID, second.ProposalID, "each solve mints a fresh proposal id")
}

func TestSolverServiceSolveRejectsEmptyRequest(t *testing.T) {
	svc := newTestSolverService(t)
	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.Error(t, err)
}

func TestSolverServiceExportReportUnknownProposalIsNotFound(t *testing.T) {
	svc := newTestSolverService(t)
	_, err := svc.ExportReport(context.Background(), "does-not-exist", models.ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSolverServiceProposalStoreEvictsPastTTL(t *testing.T) {
	store := newProposalStore(0)
	store.Save(solverProposal{ProposalID: "p1", RequestedAt: time.Now().Add(-time.Hour)})
	_, ok := store.Get("p1")
	assert.False(t, ok)
}
