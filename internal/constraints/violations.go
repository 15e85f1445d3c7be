// Package constraints implements the two pure functions the solver scores
// every candidate schedule with: Violations (hard constraints) and
// PreferenceScore (soft constraints). Neither function mutates its
// arguments and neither keeps state between calls.
package constraints

import (
	"fmt"
	"strings"

	"github.com/campusops/timetable-solver/internal/domain"
)

// Violations returns the ordered, deduplicated list of hard-constraint
// failures for schedule against dataset. Messages are emitted constraint
// by constraint, in the order documented below; within a constraint,
// courses/rooms/professors/departments are visited in dataset input
// order, and first occurrence wins on dedup.
func Violations(schedule domain.Schedule, dataset domain.Dataset) []string {
	courseByName := indexCourses(dataset.Courses)
	profByName := indexProfessors(dataset.Professors)
	roomByName := indexRooms(dataset.Rooms)

	order := assignmentOrder(schedule, dataset)

	var out []string

	// 1. Completeness.
	for _, c := range dataset.Courses {
		if c.Name == "" {
			continue
		}
		a, ok := schedule.Assignments[c.Name]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("Error: Course %s is NOT assigned to any room or time slot.", c.Name))
		case !a.IsComplete():
			out = append(out, fmt.Sprintf("Error: Course %s has incomplete assignment.", c.Name))
		}
	}

	// 2. Known course.
	for _, name := range order {
		if _, ok := courseByName[name]; !ok {
			out = append(out, fmt.Sprintf("Error: Unknown course '%s' in schedule.", name))
		}
	}

	// 3. Room capacity (only for assignments with a known room).
	for _, name := range order {
		course, ok := courseByName[name]
		if !ok {
			continue
		}
		a := schedule.Assignments[name]
		roomName := a.RoomName()
		if roomName == "" {
			continue
		}
		room, ok := roomByName[roomName]
		if !ok {
			continue
		}
		if course.Enrollment > room.Capacity {
			out = append(out, fmt.Sprintf("Error: Course %s (%d students) assigned to Room %s (%d capacity).",
				name, course.Enrollment, roomName, room.Capacity))
		}
	}

	// 4. Unknown room.
	for _, name := range order {
		a := schedule.Assignments[name]
		roomName := a.RoomName()
		if roomName == "" {
			continue
		}
		if _, ok := roomByName[roomName]; !ok {
			out = append(out, fmt.Sprintf("Error: Course %s assigned to unknown room '%s'.", name, roomName))
		}
	}

	// 5. Professor availability.
	for _, name := range order {
		course, ok := courseByName[name]
		if !ok || course.Professor == "" {
			continue
		}
		a := schedule.Assignments[name]
		if a.SlotID == nil {
			continue
		}
		prof, ok := profByName[course.Professor]
		if !ok {
			continue
		}
		if containsInt(prof.UnavailableSlots, *a.SlotID) {
			out = append(out, fmt.Sprintf("Error: Professor %s assigned to slot %d for course %s, but is unavailable.",
				course.Professor, *a.SlotID, name))
		}
	}

	// 6. Unknown professor.
	for _, name := range order {
		course, ok := courseByName[name]
		if !ok || course.Professor == "" {
			continue
		}
		if _, ok := profByName[course.Professor]; !ok {
			out = append(out, fmt.Sprintf("Error: Course %s assigned to unknown professor '%s'.", name, course.Professor))
		}
	}

	// 7. Room availability.
	for _, name := range order {
		a := schedule.Assignments[name]
		roomName := a.RoomName()
		if roomName == "" || a.SlotID == nil {
			continue
		}
		room, ok := roomByName[roomName]
		if !ok {
			continue
		}
		if containsInt(room.UnavailableSlots, *a.SlotID) {
			out = append(out, fmt.Sprintf("Error: Room %s is unavailable in slot %d but assigned to course %s.",
				roomName, *a.SlotID, name))
		}
	}

	// 8. Professor multi-booking.
	out = append(out, multiBookingViolations(order, schedule, courseByName,
		func(c domain.Course) (string, bool) { return c.Professor, c.Professor != "" },
		func(key string, slot int, courses []string) string {
			return fmt.Sprintf("Error: Professor %s multi-booked in slot %d for courses %s.", key, slot, strings.Join(courses, ", "))
		})...)

	// 9. Room multi-booking.
	out = append(out, multiBookingViolationsByAssignment(order, schedule,
		func(a domain.Assignment) (string, bool) { return a.RoomName(), a.RoomName() != "" },
		func(key string, slot int, courses []string) string {
			return fmt.Sprintf("Error: Room %s multi-booked in slot %d for courses %s.", key, slot, strings.Join(courses, ", "))
		})...)

	// 10. Department clash.
	out = append(out, multiBookingViolations(order, schedule, courseByName,
		func(c domain.Course) (string, bool) { return c.Department, c.Department != "" },
		func(key string, slot int, courses []string) string {
			return fmt.Sprintf("Error: Department %s is multi-booked in slot %d with courses %s.", key, slot, strings.Join(courses, ", "))
		})...)

	return dedupe(out)
}

// assignmentOrder returns schedule's course keys in dataset.Courses order
// first, then any keys absent from the dataset (an "unknown course") in
// sorted order, purely so repeated calls produce an identical violations
// list even for that edge case.
func assignmentOrder(schedule domain.Schedule, dataset domain.Dataset) []string {
	seen := make(map[string]bool, len(schedule.Assignments))
	order := make([]string, 0, len(schedule.Assignments))
	for _, c := range dataset.Courses {
		if _, ok := schedule.Assignments[c.Name]; ok && !seen[c.Name] {
			order = append(order, c.Name)
			seen[c.Name] = true
		}
	}
	var extra []string
	for name := range schedule.Assignments {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sortStrings(extra)
		order = append(order, extra...)
	}
	return order
}

// multiBookingViolations groups courses by (slot, key) where key comes
// from the course itself (professor name, department) and emits one
// violation per (slot, key) pair with more than one course, in first-seen
// order.
func multiBookingViolations(
	order []string,
	schedule domain.Schedule,
	courseByName map[string]domain.Course,
	keyOf func(domain.Course) (string, bool),
	message func(key string, slot int, courses []string) string,
) []string {
	groups := newSlotGroups()
	for _, name := range order {
		course, ok := courseByName[name]
		if !ok {
			continue
		}
		key, ok := keyOf(course)
		if !ok {
			continue
		}
		a := schedule.Assignments[name]
		if a.SlotID == nil {
			continue
		}
		groups.add(*a.SlotID, key, name)
	}
	return groups.violations(message)
}

// multiBookingViolationsByAssignment is multiBookingViolations for keys
// derived from the assignment (room name) rather than the course.
func multiBookingViolationsByAssignment(
	order []string,
	schedule domain.Schedule,
	keyOf func(domain.Assignment) (string, bool),
	message func(key string, slot int, courses []string) string,
) []string {
	groups := newSlotGroups()
	for _, name := range order {
		a := schedule.Assignments[name]
		if a.SlotID == nil {
			continue
		}
		key, ok := keyOf(a)
		if !ok {
			continue
		}
		groups.add(*a.SlotID, key, name)
	}
	return groups.violations(message)
}

// slotGroups tracks, per slot id, an ordered grouping of courses by key
// (professor, room, or department name), preserving first-seen order at
// both the slot level and the key level.
type slotGroups struct {
	slotOrder []int
	perSlot   map[int]*orderedMultimap
}

func newSlotGroups() *slotGroups {
	return &slotGroups{perSlot: make(map[int]*orderedMultimap)}
}

func (g *slotGroups) add(slot int, key, course string) {
	group, ok := g.perSlot[slot]
	if !ok {
		group = newOrderedMultimap()
		g.perSlot[slot] = group
		g.slotOrder = append(g.slotOrder, slot)
	}
	group.add(key, course)
}

func (g *slotGroups) violations(message func(key string, slot int, courses []string) string) []string {
	var out []string
	for _, slot := range g.slotOrder {
		group := g.perSlot[slot]
		for _, key := range group.order {
			courses := group.items[key]
			if len(courses) > 1 {
				out = append(out, message(key, slot, courses))
			}
		}
	}
	return out
}

// orderedMultimap groups values under string keys, remembering the order
// keys were first seen in.
type orderedMultimap struct {
	order []string
	items map[string][]string
}

func newOrderedMultimap() *orderedMultimap {
	return &orderedMultimap{items: make(map[string][]string)}
}

func (m *orderedMultimap) add(key, value string) {
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = append(m.items[key], value)
}

func indexCourses(courses []domain.Course) map[string]domain.Course {
	out := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		if c.Name != "" {
			out[c.Name] = c
		}
	}
	return out
}

func indexProfessors(profs []domain.Professor) map[string]domain.Professor {
	out := make(map[string]domain.Professor, len(profs))
	for _, p := range profs {
		if p.Name != "" {
			out[p.Name] = p
		}
	}
	return out
}

func indexRooms(rooms []domain.Room) map[string]domain.Room {
	out := make(map[string]domain.Room, len(rooms))
	for _, r := range rooms {
		if r.Name != "" {
			out[r.Name] = r
		}
	}
	return out
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// sortStrings is a tiny insertion sort — the slice it's called on (unknown
// course names) is expected to be minuscule.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
