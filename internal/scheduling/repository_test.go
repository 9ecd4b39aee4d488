package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

func testAppointment() Appointment {
	return Appointment{
		ID:           "APT-abc",
		CitizenID:    "CIT-001",
		CitizenName:  "María González",
		CitizenEmail: "maria@example.com",
		Procedure:    "Renovación de DNI",
		Date:         "2025-03-04",
		Time:         "09:00",
		Status:       StatusScheduled,
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	appt := testAppointment()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.CitizenID, appt.CitizenName, appt.CitizenEmail,
			appt.Procedure, appt.Date, appt.Time, "scheduled", appt.CreatedAt, appt.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), appt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))

	mock.ExpectExec("UPDATE appointments").
		WithArgs("APT-abc", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "APT-abc", StatusCancelled))

	mock.ExpectExec("UPDATE appointments").
		WithArgs("APT-missing", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "APT-missing", StatusCancelled)
	assert.ErrorContains(t, err, "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	want := testAppointment()

	rows := pgxmock.NewRows([]string{
		"id", "citizen_id", "citizen_name", "citizen_email", "procedure",
		"slot_date", "slot_time", "status", "created_at", "notes",
	}).AddRow(want.ID, want.CitizenID, want.CitizenName, want.CitizenEmail,
		want.Procedure, want.Date, want.Time, "scheduled", want.CreatedAt, "")

	mock.ExpectQuery("SELECT id").WithArgs(want.ID).WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, StatusScheduled, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHookSwallowsErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	appt := testAppointment()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.CitizenID, appt.CitizenName, appt.CitizenEmail,
			appt.Procedure, appt.Date, appt.Time, "scheduled", appt.CreatedAt, appt.Notes).
		WillReturnError(errors.New("connection refused"))

	// Must not panic or propagate.
	repo.AppointmentScheduled(context.Background(), appt)
	require.NoError(t, mock.ExpectationsWereMet())
}
