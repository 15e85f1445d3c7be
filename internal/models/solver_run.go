package models

import "time"

// SolverRun is the audit record written for a completed solve. It exists
// purely for operational history — nothing in the solve path reads it
// back.
type SolverRun struct {
	ID          string    `db:"id" json:"id"`
	ProposalID  string    `db:"proposal_id" json:"proposalId"`
	CourseCount int       `db:"course_count" json:"courseCount"`
	Cost        int       `db:"cost" json:"cost"`
	Happiness   int       `db:"happiness" json:"happiness"`
	Seed        *int64    `db:"seed" json:"seed,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ReportStatus captures the lifecycle of an asynchronous report render.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportFormat enumerates supported export formats for a solved schedule.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportJob tracks an in-flight or finished export render.
type ReportJob struct {
	ID         string
	ProposalID string
	Format     ReportFormat
	Status     ReportStatus
	DownloadURL string
	Error      string
	CreatedAt  time.Time
}
