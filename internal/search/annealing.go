package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/campusops/timetable-solver/internal/constraints"
	"github.com/campusops/timetable-solver/internal/domain"
)

const (
	validityTemp     = 500.0
	preferenceTemp   = 1000.0
	annealingCooling = 0.995
	minTemp          = 0.5
	maxAnnealIter    = 20000
)

// AnnealForValidity runs simulated annealing starting from broken, trying
// to drive the hard-constraint violation count to zero. Energy is defined
// as −cost, so a lower cost is always a higher-energy, more desirable
// state. A move to a strictly lower cost is always accepted; an
// uphill move is accepted with probability exp((currentCost−newCost)/T).
// The best (schedule, cost) pair seen is tracked and returned regardless
// of the final accepted state.
func AnnealForValidity(ctx context.Context, rng *rand.Rand, broken domain.Schedule, dataset domain.Dataset) (domain.Schedule, int, []string) {
	var explanations []string

	current := broken.Clone()
	current.Complete(dataset)
	currentCost := len(constraints.Violations(current, dataset))

	best := current.Clone()
	bestCost := currentCost

	if len(dataset.Courses) == 0 || len(dataset.Rooms) == 0 || len(dataset.TimeSlots) == 0 {
		return current, currentCost, append(explanations, "SA': insufficient data to recover.")
	}

	temp := validityTemp
	iterations := 0
	for temp > minTemp && iterations < maxAnnealIter && bestCost > 0 {
		if ctx.Err() != nil {
			break
		}
		iterations++

		neighbour := randomNeighbour(rng, current, dataset)
		newCost := len(constraints.Violations(neighbour, dataset))
		deltaEnergy := float64(currentCost - newCost)

		accept := newCost < currentCost
		if !accept {
			prob := math.Exp(deltaEnergy / temp)
			if rng.Float64() < prob {
				accept = true
			}
		}

		if accept {
			current = neighbour
			currentCost = newCost
			if currentCost < bestCost {
				best = current.Clone()
				bestCost = currentCost
			}
		}

		temp *= annealingCooling
	}

	explanations = append(explanations, fmt.Sprintf("SA': best cost after recovery attempt = %d", bestCost))
	if bestCost == 0 {
		explanations = append(explanations, "SA': recovered a fully valid schedule.")
	} else {
		explanations = append(explanations, "SA': could not fully recover to 0 violations.")
	}

	best.Complete(dataset)
	return best, bestCost, explanations
}

// AnnealForHappiness runs simulated annealing over a schedule that already
// has zero hard-constraint violations, searching for a higher preference
// score. Neighbours that introduce any violation are rejected outright
// (the temperature still cools on a rejected step). The best score seen is
// tracked independently of whether that neighbour was ever accepted as
// current.
func AnnealForHappiness(ctx context.Context, rng *rand.Rand, valid domain.Schedule, dataset domain.Dataset) (domain.Schedule, int, []string) {
	var explanations []string

	base := valid.Clone()
	base.Complete(dataset)
	current := base.Clone()
	currentScore := constraints.PreferenceScore(current, dataset)

	best := current.Clone()
	bestScore := currentScore

	if len(dataset.Courses) == 0 || len(dataset.Rooms) == 0 || len(dataset.TimeSlots) == 0 {
		return current, currentScore, append(explanations, "SA: insufficient data to optimize.")
	}

	temp := preferenceTemp
	iterations := 0
	for temp > minTemp && iterations < maxAnnealIter {
		if ctx.Err() != nil {
			break
		}
		iterations++

		neighbour := randomNeighbour(rng, current, dataset)
		if len(constraints.Violations(neighbour, dataset)) > 0 {
			temp *= annealingCooling
			continue
		}

		neighbourScore := constraints.PreferenceScore(neighbour, dataset)
		delta := neighbourScore - currentScore

		if neighbourScore > bestScore {
			best = neighbour.Clone()
			bestScore = neighbourScore
		}

		if delta > 0 {
			current = neighbour
			currentScore = neighbourScore
		} else {
			prob := math.Exp(float64(delta) / temp)
			if rng.Float64() < prob {
				current = neighbour
				currentScore = neighbourScore
			}
		}

		temp *= annealingCooling
	}

	explanations = append(explanations, fmt.Sprintf("Stage 3 (SA): best desirability found = %d", bestScore))
	best.Complete(dataset)
	return best, bestScore, explanations
}
