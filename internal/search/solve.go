package search

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/campusops/timetable-solver/internal/constraints"
	"github.com/campusops/timetable-solver/internal/domain"
)

// Solve runs the full three-stage pipeline — hill climb, validity-recovery
// SA, preference-optimisation SA — and returns the final schedule, its
// residual hard-constraint violations, its preference score, and a
// human-readable log of what each stage did. rng is the single source of
// randomness for the whole run; two calls with the same dataset and a
// *rand.Rand seeded identically produce identical output.
func Solve(ctx context.Context, dataset domain.Dataset, rng *rand.Rand) (domain.Schedule, []string, int, []string) {
	var explanations []string

	stage1Schedule, stage1Cost := HillClimb(ctx, rng, dataset)
	explanations = append(explanations, fmt.Sprintf("Stage 1 (HC): Finished with cost %d.", stage1Cost))
	if stage1Cost == 0 {
		hcHappiness := constraints.PreferenceScore(stage1Schedule, dataset)
		explanations = append(explanations, fmt.Sprintf("Stage 1 (HC): Valid schedule found with desirability = %d.", hcHappiness))
	}

	usedStage2 := false
	scheduleAfterStage2 := stage1Schedule
	finalCost := stage1Cost

	if stage1Cost > 0 {
		usedStage2 = true
		recovered, recoveredCost, stage2Expl := AnnealForValidity(ctx, rng, stage1Schedule, dataset)
		explanations = append(explanations, stage2Expl...)
		explanations = append(explanations, fmt.Sprintf("Stage 2 (SA'): cost %d.", recoveredCost))
		scheduleAfterStage2 = recovered
		finalCost = recoveredCost
	}

	if finalCost > 0 {
		finalViolations := constraints.Violations(scheduleAfterStage2, dataset)
		explanations = append(explanations, "Unable to produce fully valid schedule after Stage 2. Returning best-effort result.")
		happiness := constraints.PreferenceScore(scheduleAfterStage2, dataset)
		return scheduleAfterStage2, finalViolations, happiness, explanations
	}

	optSchedule, optScore, stage3Expl := AnnealForHappiness(ctx, rng, scheduleAfterStage2, dataset)
	explanations = append(explanations, stage3Expl...)

	finalViolations := constraints.Violations(optSchedule, dataset)
	explanations = append(explanations, "Completed optimization with SA.")
	if usedStage2 {
		explanations = insertAt(explanations, 1, "Note: Stage 2 (recovery) was used because Stage 1 failed to find a valid solution.")
	}

	return optSchedule, finalViolations, optScore, explanations
}

// insertAt inserts value at index in s, shifting the remainder right.
func insertAt(s []string, index int, value string) []string {
	if index >= len(s) {
		return append(s, value)
	}
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:index]...)
	out = append(out, value)
	out = append(out, s[index:]...)
	return out
}
