package casework

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

func testCase() Case {
	return Case{
		ID:           "CASE-abc",
		CitizenID:    "CIT-001",
		CitizenName:  "María González",
		CitizenEmail: "maria@example.com",
		Description:  "queja por mal servicio",
		Department:   DeptComplaints,
		Priority:     PriorityHigh,
		Status:       StatusPending,
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	c := testCase()

	mock.ExpectExec("INSERT INTO complex_cases").
		WithArgs(c.ID, c.CitizenID, c.CitizenName, c.CitizenEmail, c.Description,
			"complaints", "HIGH", "pending", c.CreatedAt, c.AssignedTo, c.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))

	mock.ExpectExec("UPDATE complex_cases").
		WithArgs("CASE-abc", "assigned", "funcionario-7").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "CASE-abc", StatusAssigned, "funcionario-7"))

	mock.ExpectExec("UPDATE complex_cases").
		WithArgs("CASE-missing", "assigned", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "CASE-missing", StatusAssigned, "")
	assert.ErrorContains(t, err, "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	want := testCase()

	rows := pgxmock.NewRows([]string{
		"id", "citizen_id", "citizen_name", "citizen_email", "description",
		"department", "priority", "status", "created_at", "assigned_to", "notes",
	}).AddRow(want.ID, want.CitizenID, want.CitizenName, want.CitizenEmail, want.Description,
		"complaints", "HIGH", "pending", want.CreatedAt, "", "")

	mock.ExpectQuery("SELECT id").WithArgs(want.ID).WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, DeptComplaints, got.Department)
	assert.Equal(t, PriorityHigh, got.Priority)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHookSwallowsErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithExec(mock, logging.New("error"))
	c := testCase()

	mock.ExpectExec("INSERT INTO complex_cases").
		WithArgs(c.ID, c.CitizenID, c.CitizenName, c.CitizenEmail, c.Description,
			"complaints", "HIGH", "pending", c.CreatedAt, c.AssignedTo, c.Notes).
		WillReturnError(errors.New("connection refused"))

	repo.CaseCreated(context.Background(), c)
	require.NoError(t, mock.ExpectationsWereMet())
}
