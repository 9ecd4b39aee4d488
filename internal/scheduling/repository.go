package scheduling

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

// Repository persists appointments in Postgres. The scheduler invokes it as a
// fire-and-forget hook: write failures are logged, never surfaced to the
// citizen flow.
type Repository struct {
	pool   rowQuerier
	logger *logging.Logger
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool, logger *logging.Logger) *Repository {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return newRepositoryWithExec(pool, logger)
}

func newRepositoryWithExec(exec rowQuerier, logger *logging.Logger) *Repository {
	if exec == nil {
		panic("scheduling: exec required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{pool: exec, logger: logger}
}

// Insert writes a new appointment row.
func (r *Repository) Insert(ctx context.Context, appt Appointment) error {
	query := `
		INSERT INTO appointments (id, citizen_id, citizen_name, citizen_email, procedure, slot_date, slot_time, status, created_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.pool.Exec(ctx, query,
		appt.ID, appt.CitizenID, appt.CitizenName, appt.CitizenEmail,
		appt.Procedure, appt.Date, appt.Time, string(appt.Status), appt.CreatedAt, appt.Notes,
	); err != nil {
		return fmt.Errorf("scheduling: insert appointment: %w", err)
	}
	return nil
}

// UpdateStatus updates the status column for an appointment.
func (r *Repository) UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) error {
	query := `UPDATE appointments SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, appointmentID, string(status))
	if err != nil {
		return fmt.Errorf("scheduling: update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("scheduling: appointment %s not found", appointmentID)
	}
	return nil
}

// GetByID loads a single appointment row.
func (r *Repository) GetByID(ctx context.Context, appointmentID string) (*Appointment, error) {
	query := `
		SELECT id, citizen_id, citizen_name, citizen_email, procedure, slot_date, slot_time, status, created_at, notes
		FROM appointments
		WHERE id = $1
	`
	var appt Appointment
	var status string
	if err := r.pool.QueryRow(ctx, query, appointmentID).Scan(
		&appt.ID, &appt.CitizenID, &appt.CitizenName, &appt.CitizenEmail,
		&appt.Procedure, &appt.Date, &appt.Time, &status, &appt.CreatedAt, &appt.Notes,
	); err != nil {
		return nil, fmt.Errorf("scheduling: load appointment: %w", err)
	}
	appt.Status = AppointmentStatus(status)
	return &appt, nil
}

// AppointmentScheduled implements Hook.
func (r *Repository) AppointmentScheduled(ctx context.Context, appt Appointment) {
	if err := r.Insert(ctx, appt); err != nil {
		r.logger.Error("failed to persist appointment", "error", err, "appointment_id", appt.ID)
	}
}

// AppointmentCancelled implements Hook.
func (r *Repository) AppointmentCancelled(ctx context.Context, appt Appointment) {
	if err := r.UpdateStatus(ctx, appt.ID, StatusCancelled); err != nil {
		r.logger.Error("failed to persist cancellation", "error", err, "appointment_id", appt.ID)
	}
}
