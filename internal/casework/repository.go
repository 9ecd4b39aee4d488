package casework

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists complex cases in Postgres, wired to the case service as
// a fire-and-forget hook.
type Repository struct {
	pool   rowQuerier
	logger *logging.Logger
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool, logger *logging.Logger) *Repository {
	if pool == nil {
		panic("casework: pgx pool required")
	}
	return newRepositoryWithExec(pool, logger)
}

func newRepositoryWithExec(exec rowQuerier, logger *logging.Logger) *Repository {
	if exec == nil {
		panic("casework: exec required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{pool: exec, logger: logger}
}

// Insert writes a new case row.
func (r *Repository) Insert(ctx context.Context, c Case) error {
	query := `
		INSERT INTO complex_cases (id, citizen_id, citizen_name, citizen_email, description, department, priority, status, created_at, assigned_to, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := r.pool.Exec(ctx, query,
		c.ID, c.CitizenID, c.CitizenName, c.CitizenEmail, c.Description,
		string(c.Department), string(c.Priority), string(c.Status), c.CreatedAt, c.AssignedTo, c.Notes,
	); err != nil {
		return fmt.Errorf("casework: insert case: %w", err)
	}
	return nil
}

// UpdateStatus updates status and assignee for a case.
func (r *Repository) UpdateStatus(ctx context.Context, caseID string, status CaseStatus, assignedTo string) error {
	query := `UPDATE complex_cases SET status = $2, assigned_to = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, caseID, string(status), assignedTo)
	if err != nil {
		return fmt.Errorf("casework: update case status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("casework: case %s not found", caseID)
	}
	return nil
}

// GetByID loads a single case row.
func (r *Repository) GetByID(ctx context.Context, caseID string) (*Case, error) {
	query := `
		SELECT id, citizen_id, citizen_name, citizen_email, description, department, priority, status, created_at, assigned_to, notes
		FROM complex_cases
		WHERE id = $1
	`
	var c Case
	var department, priority, status string
	if err := r.pool.QueryRow(ctx, query, caseID).Scan(
		&c.ID, &c.CitizenID, &c.CitizenName, &c.CitizenEmail, &c.Description,
		&department, &priority, &status, &c.CreatedAt, &c.AssignedTo, &c.Notes,
	); err != nil {
		return nil, fmt.Errorf("casework: load case: %w", err)
	}
	c.Department = Department(department)
	c.Priority = Priority(priority)
	c.Status = CaseStatus(status)
	return &c, nil
}

// CaseCreated implements Hook.
func (r *Repository) CaseCreated(ctx context.Context, c Case) {
	if err := r.Insert(ctx, c); err != nil {
		r.logger.Error("failed to persist case", "error", err, "case_id", c.ID)
	}
}

// CaseUpdated implements Hook.
func (r *Repository) CaseUpdated(ctx context.Context, c Case) {
	if err := r.UpdateStatus(ctx, c.ID, c.Status, c.AssignedTo); err != nil {
		r.logger.Error("failed to persist case update", "error", err, "case_id", c.ID)
	}
}
