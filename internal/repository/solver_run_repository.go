package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-solver/internal/models"
)

// SolverRunRepository persists the audit trail of completed solves.
type SolverRunRepository struct {
	db *sqlx.DB
}

// NewSolverRunRepository constructs the repository.
func NewSolverRunRepository(db *sqlx.DB) *SolverRunRepository {
	return &SolverRunRepository{db: db}
}

// Create inserts a solver_runs row inside the caller's transaction.
func (r *SolverRunRepository) Create(ctx context.Context, exec sqlx.ExtContext, run *models.SolverRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO solver_runs (id, proposal_id, course_count, cost, happiness, seed, created_at)
		VALUES (:id, :proposal_id, :course_count, :cost, :happiness, :seed, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, run); err != nil {
		return fmt.Errorf("create solver run: %w", err)
	}
	return nil
}

// ListRecent returns the most recently recorded solves, newest first.
func (r *SolverRunRepository) ListRecent(ctx context.Context, limit int) ([]models.SolverRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, proposal_id, course_count, cost, happiness, seed, created_at
		FROM solver_runs ORDER BY created_at DESC LIMIT $1`
	var runs []models.SolverRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list solver runs: %w", err)
	}
	return runs, nil
}
