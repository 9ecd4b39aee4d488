package scheduling

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

var schedulingTracer = otel.Tracer("civitas.internal.scheduling")

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a committed booking for a citizen.
type Appointment struct {
	ID           string            `json:"id"`
	CitizenID    string            `json:"citizen_id"`
	CitizenName  string            `json:"citizen_name"`
	CitizenEmail string            `json:"citizen_email"`
	Procedure    string            `json:"procedure"`
	Date         string            `json:"date"` // YYYY-MM-DD
	Time         string            `json:"time"` // HH:MM
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	Notes        string            `json:"notes,omitempty"`
}

// ScheduleRequest carries the data needed to book a slot.
type ScheduleRequest struct {
	CitizenID    string
	CitizenName  string
	CitizenEmail string
	Procedure    string
	Date         string
	Time         string
	Notes        string
}

// Result reports the outcome of a schedule or cancel call. Validation and
// not-found failures come back as Success=false with a citizen-readable
// message, never as an error.
type Result struct {
	Success     bool
	Message     string
	Appointment *Appointment
}

// Hook receives committed appointments fire-and-forget. The scheduler does not
// depend on a hook's success.
type Hook interface {
	AppointmentScheduled(ctx context.Context, appt Appointment)
	AppointmentCancelled(ctx context.Context, appt Appointment)
}

// Scheduler turns booking requests into committed appointments backed by an
// AvailabilityStore.
type Scheduler struct {
	store  *AvailabilityStore
	logger *logging.Logger
	hooks  []Hook

	mu           sync.Mutex
	appointments map[string]*Appointment
}

// NewScheduler constructs a scheduler around the supplied store.
func NewScheduler(store *AvailabilityStore, logger *logging.Logger, hooks ...Hook) *Scheduler {
	if store == nil {
		panic("scheduling: availability store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:        store,
		logger:       logger,
		hooks:        hooks,
		appointments: make(map[string]*Appointment),
	}
}

// Schedule validates the requested slot, reserves it, and commits the
// appointment. Validation order is date first, then time.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) Result {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.schedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("civitas.citizen_id", req.CitizenID),
		attribute.String("civitas.slot_date", req.Date),
		attribute.String("civitas.slot_time", req.Time),
	)

	if !s.store.HasDate(req.Date) {
		return Result{Message: fmt.Sprintf("La fecha %s no está disponible", req.Date)}
	}

	// Reserve is the atomic check-and-decrement; a capacity=0 slot and an
	// unknown time both land here.
	if !s.store.Reserve(req.Date, req.Time) {
		return Result{Message: fmt.Sprintf("El horario %s no está disponible para %s", req.Time, req.Date)}
	}

	appt := &Appointment{
		ID:           "APT-" + uuid.NewString(),
		CitizenID:    req.CitizenID,
		CitizenName:  req.CitizenName,
		CitizenEmail: req.CitizenEmail,
		Procedure:    req.Procedure,
		Date:         req.Date,
		Time:         req.Time,
		Status:       StatusScheduled,
		CreatedAt:    time.Now().UTC(),
		Notes:        req.Notes,
	}

	s.mu.Lock()
	s.appointments[appt.ID] = appt
	s.mu.Unlock()

	s.logger.Info("appointment scheduled",
		"appointment_id", appt.ID,
		"citizen_id", appt.CitizenID,
		"date", appt.Date,
		"time", appt.Time,
	)

	for _, hook := range s.hooks {
		hook.AppointmentScheduled(ctx, *appt)
	}

	return Result{
		Success:     true,
		Message:     fmt.Sprintf("Cita programada para %s a las %s. ID: %s", appt.Date, appt.Time, appt.ID),
		Appointment: appt,
	}
}

// Cancel releases the appointment's slot and marks it cancelled. Cancelling
// twice is a no-op failure so a double cancel can never double-release
// capacity.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID string) Result {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("civitas.appointment_id", appointmentID))

	s.mu.Lock()
	appt, ok := s.appointments[appointmentID]
	if !ok {
		s.mu.Unlock()
		return Result{Message: fmt.Sprintf("No se encontró la cita %s", appointmentID)}
	}
	if appt.Status == StatusCancelled {
		s.mu.Unlock()
		return Result{Message: fmt.Sprintf("La cita %s ya está cancelada", appointmentID)}
	}
	appt.Status = StatusCancelled
	snapshot := *appt
	s.mu.Unlock()

	s.store.Release(snapshot.Date, snapshot.Time)

	s.logger.Info("appointment cancelled",
		"appointment_id", snapshot.ID,
		"date", snapshot.Date,
		"time", snapshot.Time,
	)

	for _, hook := range s.hooks {
		hook.AppointmentCancelled(ctx, snapshot)
	}

	return Result{
		Success:     true,
		Message:     fmt.Sprintf("Cita %s cancelada exitosamente", snapshot.ID),
		Appointment: &snapshot,
	}
}

// Get returns the appointment with the given id, or nil.
func (s *Scheduler) Get(appointmentID string) *Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appointments[appointmentID]
	if !ok {
		return nil
	}
	snapshot := *appt
	return &snapshot
}

// ListByCitizen returns all appointments belonging to a citizen.
func (s *Scheduler) ListByCitizen(citizenID string) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Appointment
	for _, appt := range s.appointments {
		if appt.CitizenID == citizenID {
			out = append(out, *appt)
		}
	}
	return out
}
