// Package search implements the three-stage metaheuristic that turns a
// Dataset into a Schedule: a deterministic hill climb for validity, a
// simulated-annealing recovery pass when the climb gets stuck, and a
// simulated-annealing pass that raises the preference score while rejecting
// any move that breaks validity. Every call takes its randomness from a caller-supplied
// *rand.Rand so a run is exactly reproducible given the same seed.
package search

import (
	"math/rand"

	"github.com/campusops/timetable-solver/internal/domain"
)

// GenerateRandomSchedule assigns every course in dataset to a uniformly
// random (room, slot) pair, then completes the schedule so every course
// has an entry. A dataset with no rooms, no slots, or no courses produces
// an all-unassigned schedule.
func GenerateRandomSchedule(rng *rand.Rand, dataset domain.Dataset) domain.Schedule {
	schedule := domain.NewSchedule()

	if len(dataset.Rooms) == 0 || len(dataset.TimeSlots) == 0 || len(dataset.Courses) == 0 {
		schedule.Complete(dataset)
		return schedule
	}

	for _, c := range dataset.Courses {
		if c.Name == "" {
			continue
		}
		room := dataset.Rooms[rng.Intn(len(dataset.Rooms))]
		slot := dataset.TimeSlots[rng.Intn(len(dataset.TimeSlots))]
		if room.Name == "" {
			schedule.SetUnassigned(c.Name)
			continue
		}
		schedule.Set(c.Name, room.Name, slot.SlotID)
	}

	schedule.Complete(dataset)
	return schedule
}

// sameAssignment reports whether orig already places the course in room at
// slot — used to skip no-op neighbours during full enumeration.
func sameAssignment(orig domain.Assignment, room string, slot int) bool {
	return orig.RoomName() == room && orig.SlotID != nil && *orig.SlotID == slot
}

// randomNeighbour returns a clone of current with one randomly chosen
// course moved to a randomly chosen (room, slot) pair. Callers must only
// invoke this when dataset has at least one course, room, and slot.
func randomNeighbour(rng *rand.Rand, current domain.Schedule, dataset domain.Dataset) domain.Schedule {
	course := dataset.Courses[rng.Intn(len(dataset.Courses))]
	room := dataset.Rooms[rng.Intn(len(dataset.Rooms))]
	slot := dataset.TimeSlots[rng.Intn(len(dataset.TimeSlots))]

	neighbour := current.Clone()
	neighbour.Set(course.Name, room.Name, slot.SlotID)
	neighbour.Complete(dataset)
	return neighbour
}
