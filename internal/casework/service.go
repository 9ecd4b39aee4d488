package casework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

var caseworkTracer = otel.Tracer("civitas.internal.casework")

// CaseStatus enumerates the complex-case lifecycle.
type CaseStatus string

const (
	StatusPending    CaseStatus = "pending"
	StatusAssigned   CaseStatus = "assigned"
	StatusInProgress CaseStatus = "in_progress"
	StatusResolved   CaseStatus = "resolved"
)

func validStatus(s CaseStatus) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Case is an escalation routed to a municipal department.
type Case struct {
	ID           string     `json:"id"`
	CitizenID    string     `json:"citizen_id"`
	CitizenName  string     `json:"citizen_name"`
	CitizenEmail string     `json:"citizen_email"`
	Description  string     `json:"description"`
	Department   Department `json:"department"`
	Priority     Priority   `json:"priority"`
	Status       CaseStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// CreateRequest carries the data needed to open a case.
type CreateRequest struct {
	CitizenID    string
	CitizenName  string
	CitizenEmail string
	Description  string
	Priority     Priority
}

// Result reports the outcome of a case operation.
type Result struct {
	Success bool
	Message string
	Case    *Case
}

// Hook receives created/updated cases fire-and-forget.
type Hook interface {
	CaseCreated(ctx context.Context, c Case)
	CaseUpdated(ctx context.Context, c Case)
}

// Service manages the complex-case lifecycle: creation with department
// routing, status lookup, and status transitions.
type Service struct {
	logger *logging.Logger
	hooks  []Hook

	mu    sync.Mutex
	cases map[string]*Case
}

// NewService constructs a case service.
func NewService(logger *logging.Logger, hooks ...Hook) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		logger: logger,
		hooks:  hooks,
		cases:  make(map[string]*Case),
	}
}

// CreateCase routes the description to a department, opens the case, and
// returns the confirmation message. Creation has no failure path.
func (s *Service) CreateCase(ctx context.Context, req CreateRequest) Result {
	ctx, span := caseworkTracer.Start(ctx, "casework.create_case")
	defer span.End()

	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	department := RouteToDepartment(req.Description)

	c := &Case{
		ID:           "CASE-" + uuid.NewString(),
		CitizenID:    req.CitizenID,
		CitizenName:  req.CitizenName,
		CitizenEmail: req.CitizenEmail,
		Description:  req.Description,
		Department:   department,
		Priority:     req.Priority,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.cases[c.ID] = c
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("civitas.case_id", c.ID),
		attribute.String("civitas.department", string(c.Department)),
		attribute.String("civitas.priority", string(c.Priority)),
	)
	s.logger.Info("complex case created",
		"case_id", c.ID,
		"citizen_id", c.CitizenID,
		"department", c.Department,
		"priority", c.Priority,
	)

	for _, hook := range s.hooks {
		hook.CaseCreated(ctx, *c)
	}

	message := fmt.Sprintf(
		"Caso derivado al %s\nID de caso: %s\nPrioridad: %s\nEstado: Pendiente de revisión",
		department.DisplayName(), c.ID, c.Priority,
	)
	snapshot := *c
	return Result{Success: true, Message: message, Case: &snapshot}
}

// GetStatus returns the case with the given id, or nil.
func (s *Service) GetStatus(caseID string) *Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil
	}
	snapshot := *c
	return &snapshot
}

// UpdateStatus transitions a case to a new lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, caseID string, newStatus CaseStatus) Result {
	ctx, span := caseworkTracer.Start(ctx, "casework.update_status")
	defer span.End()

	if !validStatus(newStatus) {
		return Result{Message: fmt.Sprintf("Estado %q no válido", newStatus)}
	}

	s.mu.Lock()
	c, ok := s.cases[caseID]
	if !ok {
		s.mu.Unlock()
		return Result{Message: fmt.Sprintf("Caso %s no encontrado", caseID)}
	}
	c.Status = newStatus
	snapshot := *c
	s.mu.Unlock()

	s.logger.Info("case status updated", "case_id", caseID, "status", newStatus)

	for _, hook := range s.hooks {
		hook.CaseUpdated(ctx, snapshot)
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Caso %s actualizado a %s", caseID, newStatus),
		Case:    &snapshot,
	}
}

// ListByDepartment returns all cases currently routed to a department.
func (s *Service) ListByDepartment(dept Department) []Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Case
	for _, c := range s.cases {
		if c.Department == dept {
			out = append(out, *c)
		}
	}
	return out
}
