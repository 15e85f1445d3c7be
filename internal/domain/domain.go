// Package domain defines the value types the solver core operates on:
// time slots, professors, rooms, courses, and the schedule under search.
// Nothing in this package touches a transport or storage library — the
// core is built to be reused by any caller that can build a Dataset.
package domain

// TimeSlot is a discrete teaching period. SlotID is the only identity the
// evaluator and search use; Day/StartTime/EndTime are descriptive.
type TimeSlot struct {
	SlotID    int
	Day       string
	StartTime string
	EndTime   string
}

// Professor carries availability and preference sets, expressed as slot id
// sets. The three slices are semantically sets: the evaluator in
// internal/constraints only tests membership, so duplicates are ignored.
type Professor struct {
	Name             string
	UnavailableSlots []int
	PreferredSlots   []int
	HatesSlots       []int
}

// Room is a teaching space with a seat count and a set of slots it cannot
// host a class in.
type Room struct {
	Name             string
	Capacity         int
	UnavailableSlots []int
}

// Course is a single teachable unit taught by one professor in one
// department. IsElectiveFor is carried through untouched by the core — no
// constraint or score signal reads it.
type Course struct {
	Name          string
	Enrollment    int
	Professor     string
	Department    string
	IsElectiveFor []string
}

// Dataset is the immutable input to a solve: the four entity lists in
// their original order. Iteration order over these slices is what makes
// Violations and the hill-climb neighbourhood deterministic.
type Dataset struct {
	Professors []Professor
	Rooms      []Room
	TimeSlots  []TimeSlot
	Courses    []Course
}

// Assignment is a course's (room, slot) placement. A nil field means that
// half of the placement is unset; both nil is the "unassigned" sentinel.
type Assignment struct {
	Room   *string
	SlotID *int
}

// IsComplete reports whether both halves of the assignment are present.
func (a Assignment) IsComplete() bool {
	return a.Room != nil && *a.Room != "" && a.SlotID != nil
}

// IsUnassigned reports whether the assignment is the (nil, nil) sentinel.
func (a Assignment) IsUnassigned() bool {
	return a.Room == nil && a.SlotID == nil
}

// RoomName returns the assigned room name, or "" if unset.
func (a Assignment) RoomName() string {
	if a.Room == nil {
		return ""
	}
	return *a.Room
}

// Schedule maps course name to its assignment. A Schedule returned by the
// search always has one entry per course in the dataset.
type Schedule struct {
	Assignments map[string]Assignment
}

// NewSchedule returns an empty schedule ready for assignment.
func NewSchedule() Schedule {
	return Schedule{Assignments: make(map[string]Assignment)}
}

// Clone returns a deep-enough copy: the map is new, but Assignment values
// are copied by value (their pointer fields point at the same strings/ints,
// which is safe since callers never mutate *Room or *SlotID in place).
func (s Schedule) Clone() Schedule {
	out := make(map[string]Assignment, len(s.Assignments))
	for k, v := range s.Assignments {
		out[k] = v
	}
	return Schedule{Assignments: out}
}

// Set assigns course to (room, slotID). Use SetUnassigned for the sentinel.
func (s Schedule) Set(course, room string, slotID int) {
	r := room
	sid := slotID
	s.Assignments[course] = Assignment{Room: &r, SlotID: &sid}
}

// SetUnassigned stores the (nil, nil) sentinel for course.
func (s Schedule) SetUnassigned(course string) {
	s.Assignments[course] = Assignment{}
}

// Complete ensures every course in the dataset has an entry, inserting the
// (nil, nil) sentinel for any that are missing. Mirrors the completion
// rule: "after any construction or mutation, every course in the dataset
// must have an entry in assignments".
func (s Schedule) Complete(dataset Dataset) {
	for _, c := range dataset.Courses {
		name := c.Name
		if name == "" {
			continue
		}
		if _, ok := s.Assignments[name]; !ok {
			s.SetUnassigned(name)
		}
	}
}
