package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusops/timetable-solver/internal/domain"
)

func TestPreferenceScoreBaseline(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 2) // 20/30 capacity, slot 2 is Alice's hated slot
	schedule.Set("Bio101", "hall_b", 3)  // 15/10 capacity -> no wasted-seat penalty (negative wasted ignored)

	got := PreferenceScore(schedule, dataset)
	// baseline 1000, -10 wasted seats on hall_a, -100 for Alice's hated slot 2,
	// +30 since Math101 and Bio101 (same department) land in different slots.
	assert.Equal(t, 1000-10-100+departmentPairBonus, got)
}

func TestPreferenceScorePreferredSlotBonus(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1) // Alice's preferred slot
	schedule.Set("Bio101", "hall_b", 3)

	got := PreferenceScore(schedule, dataset)
	assert.Equal(t, 1000-10+20+departmentPairBonus, got)
}

func TestPreferenceScoreDayBalanceBonus(t *testing.T) {
	dataset := baseDataset()
	dataset.Courses = append(dataset.Courses, domain.Course{Name: "Math102", Enrollment: 10, Professor: "Alice", Department: "Science"})
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)  // Monday
	schedule.Set("Math102", "hall_a", 3)  // Tuesday
	schedule.Set("Bio101", "hall_b", 4)

	got := PreferenceScore(schedule, dataset)
	assert.GreaterOrEqual(t, got, 1000+dayBalanceBonus)
}

func TestPreferenceScoreDepartmentSpreadBonus(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_b", 3)

	got := PreferenceScore(schedule, dataset)
	assert.GreaterOrEqual(t, got, 1000+departmentPairBonus)
}

func TestPreferenceScoreDepartmentSpreadSkippedWhenSameSlot(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_b", 1)

	got := PreferenceScore(schedule, dataset)
	withoutBonus := PreferenceScore(schedule, dataset)
	assert.Equal(t, got, withoutBonus)
	assert.Less(t, got, 1000+departmentPairBonus)
}

func TestPreferenceScoreVenueConsolidationBonus(t *testing.T) {
	dataset := baseDataset()
	dataset.Courses = append(dataset.Courses, domain.Course{Name: "Math102", Enrollment: 10, Professor: "Alice", Department: "Science"})
	dataset.Rooms = append(dataset.Rooms, domain.Room{Name: "hall_c", Capacity: 30})
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Math102", "hall_a", 3)
	schedule.Set("Bio101", "hall_b", 4)

	got := PreferenceScore(schedule, dataset)
	// -10 and -20 wasted seats on hall_a, +20 preferred slot 1, +40 Alice
	// teaches Monday and Tuesday, +30 for each of the three Science pairs in
	// distinct slots, +30 because both of Alice's rooms are in "hall".
	assert.Equal(t, 1000-10-20+preferredSlotBonus+dayBalanceBonus+3*departmentPairBonus+venueBonus, got)
}

func TestRoomBuildingHeuristic(t *testing.T) {
	cases := map[string]string{
		"hall_a":     "hall",
		"lab_101":    "lab",
		"BlockB-201": "blockb",
		"":           "",
		"standalone": "standalone",
	}
	for in, want := range cases {
		assert.Equal(t, want, roomBuilding(in), in)
	}
}
