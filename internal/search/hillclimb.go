package search

import (
	"context"
	"math/rand"

	"github.com/campusops/timetable-solver/internal/constraints"
	"github.com/campusops/timetable-solver/internal/domain"
)

// maxNoImprove bounds how many consecutive non-improving rounds the hill
// climb tolerates before giving up.
const maxNoImprove = 200

// HillClimb runs a deterministic best-improvement local search, starting
// from a random schedule, over the full (course, room, slot) neighbourhood.
// It stops at cost 0, after maxNoImprove rounds without a strict
// improvement, immediately if the dataset has no courses, or as soon as
// ctx is cancelled (the schedule found so far is returned either way).
func HillClimb(ctx context.Context, rng *rand.Rand, dataset domain.Dataset) (domain.Schedule, int) {
	current := GenerateRandomSchedule(rng, dataset)
	currentCost := len(constraints.Violations(current, dataset))

	if len(dataset.Courses) == 0 {
		return current, currentCost
	}

	stepsNoImprove := 0
	for stepsNoImprove < maxNoImprove {
		if ctx.Err() != nil {
			return current, currentCost
		}
		if currentCost == 0 {
			return current, 0
		}

		var bestNeighbour domain.Schedule
		haveBest := false
		bestCost := currentCost

		for _, c := range dataset.Courses {
			if c.Name == "" {
				continue
			}
			orig := current.Assignments[c.Name]

			for _, room := range dataset.Rooms {
				for _, slot := range dataset.TimeSlots {
					if sameAssignment(orig, room.Name, slot.SlotID) {
						continue
					}
					neighbour := current.Clone()
					neighbour.Set(c.Name, room.Name, slot.SlotID)
					neighbour.Complete(dataset)

					cost := len(constraints.Violations(neighbour, dataset))
					if cost < bestCost {
						bestCost = cost
						bestNeighbour = neighbour
						haveBest = true
					}
				}
			}
		}

		if haveBest && bestCost < currentCost {
			current = bestNeighbour
			currentCost = bestCost
			stepsNoImprove = 0
		} else {
			stepsNoImprove++
		}
	}

	return current, currentCost
}
