package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusops/timetable-solver/internal/domain"
)

func baseDataset() domain.Dataset {
	return domain.Dataset{
		Professors: []domain.Professor{
			{Name: "Alice", UnavailableSlots: []int{3}, PreferredSlots: []int{1}, HatesSlots: []int{2}},
			{Name: "Bob", UnavailableSlots: []int{}, PreferredSlots: []int{}, HatesSlots: []int{}},
		},
		Rooms: []domain.Room{
			{Name: "hall_a", Capacity: 30, UnavailableSlots: []int{4}},
			{Name: "hall_b", Capacity: 10, UnavailableSlots: []int{}},
		},
		TimeSlots: []domain.TimeSlot{
			{SlotID: 1, Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
			{SlotID: 2, Day: "Monday", StartTime: "10:00", EndTime: "11:00"},
			{SlotID: 3, Day: "Tuesday", StartTime: "09:00", EndTime: "10:00"},
			{SlotID: 4, Day: "Tuesday", StartTime: "10:00", EndTime: "11:00"},
		},
		Courses: []domain.Course{
			{Name: "Math101", Enrollment: 20, Professor: "Alice", Department: "Science"},
			{Name: "Bio101", Enrollment: 15, Professor: "Bob", Department: "Science"},
		},
	}
}

func TestViolationsCompleteness(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1) // Bio101 has no entry at all

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Course Bio101 is NOT assigned to any room or time slot.")
	assert.NotContains(t, got, "Error: Course Math101 is NOT assigned to any room or time slot.")
}

func TestViolationsIncompleteAssignment(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Assignments["Bio101"] = domain.Assignment{Room: nil, SlotID: intPtr(2)}

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Course Bio101 has incomplete assignment.")
}

func TestViolationsRoomCapacity(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_b", 1) // enrollment 20 > capacity 10
	schedule.Set("Bio101", "hall_a", 2)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Course Math101 (20 students) assigned to Room hall_b (10 capacity).")
}

func TestViolationsUnknownRoom(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "phantom_room", 1)
	schedule.Set("Bio101", "hall_a", 2)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Course Math101 assigned to unknown room 'phantom_room'.")
}

func TestViolationsProfessorUnavailable(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 3) // Alice unavailable at slot 3
	schedule.Set("Bio101", "hall_b", 1)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Professor Alice assigned to slot 3 for course Math101, but is unavailable.")
}

func TestViolationsUnknownProfessor(t *testing.T) {
	dataset := baseDataset()
	dataset.Courses[0].Professor = "Ghost"
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_b", 2)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Course Math101 assigned to unknown professor 'Ghost'.")
}

func TestViolationsRoomUnavailable(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 4) // hall_a unavailable at slot 4
	schedule.Set("Bio101", "hall_b", 1)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Room hall_a is unavailable in slot 4 but assigned to course Math101.")
}

func TestViolationsProfessorMultiBooking(t *testing.T) {
	dataset := baseDataset()
	dataset.Courses = append(dataset.Courses, domain.Course{Name: "Math102", Enrollment: 5, Professor: "Alice", Department: "Science"})
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Math102", "hall_b", 1)
	schedule.Set("Bio101", "hall_b", 2)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Professor Alice multi-booked in slot 1 for courses Math101, Math102.")
}

func TestViolationsRoomMultiBooking(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_a", 1)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Room hall_a multi-booked in slot 1 for courses Math101, Bio101.")
}

func TestViolationsDepartmentClash(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_b", 1)

	got := Violations(schedule, dataset)
	assert.Contains(t, got, "Error: Department Science is multi-booked in slot 1 with courses Math101, Bio101.")
}

func TestViolationsNoneOnValidSchedule(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_a", 2) // hall_b (10 seats) is too small for Bio101's 15

	got := Violations(schedule, dataset)
	assert.Empty(t, got)
}

func TestViolationsAreDeterministic(t *testing.T) {
	dataset := baseDataset()
	schedule := domain.NewSchedule()
	schedule.Set("Math101", "hall_a", 1)
	schedule.Set("Bio101", "hall_a", 1)

	first := Violations(schedule, dataset)
	second := Violations(schedule, dataset)
	assert.Equal(t, first, second)
}

func intPtr(v int) *int { return &v }
