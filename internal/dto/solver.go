package dto

import "time"

// ProfessorInput mirrors domain.Professor on the wire.
type ProfessorInput struct {
	Name             string `json:"name" validate:"required"`
	UnavailableSlots []int  `json:"unavailableSlots"`
	PreferredSlots   []int  `json:"preferredSlots"`
	HatesSlots       []int  `json:"hatesSlots"`
}

// RoomInput mirrors domain.Room on the wire.
type RoomInput struct {
	Name             string `json:"name" validate:"required"`
	Capacity         int    `json:"capacity" validate:"min=0"`
	UnavailableSlots []int  `json:"unavailableSlots"`
}

// TimeSlotInput mirrors domain.TimeSlot on the wire.
type TimeSlotInput struct {
	SlotID    int    `json:"slotId"`
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// CourseInput mirrors domain.Course on the wire.
type CourseInput struct {
	Name          string   `json:"name" validate:"required"`
	Enrollment    int      `json:"enrollment" validate:"min=0"`
	Professor     string   `json:"professor"`
	Department    string   `json:"department"`
	IsElectiveFor []string `json:"isElectiveFor"`
}

// SolveRequest is the full problem instance submitted to the solver.
// Seed is optional: when present the solve is exactly reproducible;
// when absent the service draws one from its injected entropy source.
type SolveRequest struct {
	Professors []ProfessorInput `json:"professors" validate:"required,min=1,dive"`
	Rooms      []RoomInput      `json:"rooms" validate:"required,min=1,dive"`
	TimeSlots  []TimeSlotInput  `json:"timeSlots" validate:"required,min=1,dive"`
	Courses    []CourseInput    `json:"courses" validate:"required,min=1,dive"`
	Seed       *int64           `json:"seed,omitempty" validate:"omitempty"`
}

// AssignmentDTO is a course's (room, slot) placement, JSON-serialising an
// unset half as null.
type AssignmentDTO struct {
	Room   *string `json:"room"`
	SlotID *int    `json:"slotId"`
}

// ScheduleDTO is the wire form of domain.Schedule.
type ScheduleDTO struct {
	Assignments map[string]AssignmentDTO `json:"assignments"`
}

// SolveResponse is the outcome of a solve, plus the identifier a client
// uses to request a CSV/PDF export of the same schedule without
// resubmitting the dataset.
type SolveResponse struct {
	ProposalID  string      `json:"proposalId"`
	Schedule    ScheduleDTO `json:"schedule"`
	Violations  []string    `json:"violations"`
	Cost        int         `json:"cost"`
	Happiness   int         `json:"happiness"`
	Explanation []string    `json:"explanation"`
}

// ReportResponse is the outcome of rendering a proposal to CSV/PDF: a
// scoped, time-limited download URL rather than the file bytes themselves.
type ReportResponse struct {
	ProposalID  string    `json:"proposalId"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
