package constraints

import (
	"strings"

	"github.com/campusops/timetable-solver/internal/domain"
)

// Baseline and per-signal weights for PreferenceScore. Kept as named
// constants instead of inline literals so the scoring rationale is
// readable without cross-referencing anything external.
const (
	baselineScore = 1000

	preferredSlotBonus  = 20
	hatedSlotPenalty    = 100
	dayBalanceBonus     = 40
	departmentPairBonus = 30
	venueBonus          = 30
)

// PreferenceScore returns the soft-constraint score for schedule against
// dataset. Higher is better. The score is not bounded below or above; a
// schedule riddled with hard-constraint violations can still score high
// on preference alone, which is why the search only compares preference
// scores between schedules that are already fully valid.
func PreferenceScore(schedule domain.Schedule, dataset domain.Dataset) int {
	roomByName := indexRooms(dataset.Rooms)
	profByName := indexProfessors(dataset.Professors)

	score := baselineScore

	score += roomEfficiency(schedule, dataset, roomByName)
	score += professorPreferences(schedule, dataset, profByName)
	score += professorDayBalance(schedule, dataset)
	score += departmentLoadSpread(schedule, dataset)
	score += venueConsolidation(schedule, dataset)

	return score
}

// roomEfficiency subtracts one point per empty seat in the assigned room.
func roomEfficiency(schedule domain.Schedule, dataset domain.Dataset, roomByName map[string]domain.Room) int {
	delta := 0
	for _, c := range dataset.Courses {
		a, ok := schedule.Assignments[c.Name]
		if !ok {
			continue
		}
		roomName := a.RoomName()
		if roomName == "" {
			continue
		}
		room, ok := roomByName[roomName]
		if !ok {
			continue
		}
		if wasted := room.Capacity - c.Enrollment; wasted > 0 {
			delta -= wasted
		}
	}
	return delta
}

// professorPreferences rewards placing a course in a professor's preferred
// slot and penalizes placing it in a slot they hate.
func professorPreferences(schedule domain.Schedule, dataset domain.Dataset, profByName map[string]domain.Professor) int {
	delta := 0
	for _, c := range dataset.Courses {
		a, ok := schedule.Assignments[c.Name]
		if !ok || a.SlotID == nil || c.Professor == "" {
			continue
		}
		prof, ok := profByName[c.Professor]
		if !ok {
			continue
		}
		if containsInt(prof.PreferredSlots, *a.SlotID) {
			delta += preferredSlotBonus
		}
		if containsInt(prof.HatesSlots, *a.SlotID) {
			delta -= hatedSlotPenalty
		}
	}
	return delta
}

// professorDayBalance rewards a professor whose teaching load (two or more
// courses) is spread across at least two distinct days.
func professorDayBalance(schedule domain.Schedule, dataset domain.Dataset) int {
	slotDay := make(map[int]string, len(dataset.TimeSlots))
	for _, t := range dataset.TimeSlots {
		slotDay[t.SlotID] = strings.ToLower(t.Day)
	}

	delta := 0
	for _, p := range dataset.Professors {
		var taught []string
		for _, c := range dataset.Courses {
			if c.Professor != p.Name {
				continue
			}
			if _, ok := schedule.Assignments[c.Name]; ok {
				taught = append(taught, c.Name)
			}
		}
		if len(taught) <= 1 {
			continue
		}
		days := make(map[string]bool)
		for _, cname := range taught {
			a := schedule.Assignments[cname]
			if a.SlotID == nil {
				continue
			}
			if day, ok := slotDay[*a.SlotID]; ok && day != "" {
				days[day] = true
			}
		}
		if len(days) >= 2 {
			delta += dayBalanceBonus
		}
	}
	return delta
}

// departmentLoadSpread rewards every pair of same-department courses that
// land in different slots, including the case where one or both are still
// unassigned — a course with a nil slot is treated as different from any
// real slot, and as equal only to another nil slot.
func departmentLoadSpread(schedule domain.Schedule, dataset domain.Dataset) int {
	deptCourses := make(map[string][]string)
	var deptOrder []string
	for _, c := range dataset.Courses {
		if c.Department == "" {
			continue
		}
		if _, ok := deptCourses[c.Department]; !ok {
			deptOrder = append(deptOrder, c.Department)
		}
		deptCourses[c.Department] = append(deptCourses[c.Department], c.Name)
	}

	delta := 0
	for _, dept := range deptOrder {
		courses := deptCourses[dept]
		for i := 0; i < len(courses); i++ {
			ai, aok := schedule.Assignments[courses[i]]
			if !aok {
				continue
			}
			for j := i + 1; j < len(courses); j++ {
				bi, bok := schedule.Assignments[courses[j]]
				if !bok {
					continue
				}
				if slotsDiffer(ai, bi) {
					delta += departmentPairBonus
				}
			}
		}
	}
	return delta
}

func slotsDiffer(a, b domain.Assignment) bool {
	if a.SlotID == nil && b.SlotID == nil {
		return false
	}
	if a.SlotID == nil || b.SlotID == nil {
		return true
	}
	return *a.SlotID != *b.SlotID
}

// venueConsolidation rewards a professor with two or more courses in the
// schedule whose set rooms all share the same building prefix. A professor
// with a single scheduled course never qualifies; courses without a room
// are skipped when comparing buildings, so one course in a room plus one
// without a room still earns the bonus.
func venueConsolidation(schedule domain.Schedule, dataset domain.Dataset) int {
	delta := 0
	for _, p := range dataset.Professors {
		var taughtRooms []string
		for _, c := range dataset.Courses {
			if c.Professor != p.Name {
				continue
			}
			a, ok := schedule.Assignments[c.Name]
			if !ok {
				continue
			}
			taughtRooms = append(taughtRooms, a.RoomName())
		}
		if len(taughtRooms) <= 1 {
			continue
		}
		buildings := make(map[string]bool)
		for _, r := range taughtRooms {
			if r == "" {
				continue
			}
			buildings[roomBuilding(r)] = true
		}
		if len(buildings) == 1 {
			for b := range buildings {
				if b != "" {
					delta += venueBonus
				}
			}
		}
	}
	return delta
}

// roomBuilding extracts the building prefix from a room name: the text
// before the first '_' or '-', with any trailing digits stripped and the
// result lowercased. "hall_a" -> "hall", "lab101" -> "lab", "BlockB-201"
// -> "blockb".
func roomBuilding(name string) string {
	if name == "" {
		return ""
	}
	token := name
	if idx := strings.IndexAny(name, "_-"); idx >= 0 {
		token = name[:idx]
	}
	end := len(token)
	for end > 0 && token[end-1] >= '0' && token[end-1] <= '9' {
		end--
	}
	return strings.ToLower(token[:end])
}
