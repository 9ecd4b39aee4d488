package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/civitas-ai/citizen-assist-platform/internal/observability/metrics"
	"github.com/civitas-ai/citizen-assist-platform/internal/scheduling"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// AppointmentsHandler exposes slot listing, booking, and cancellation.
type AppointmentsHandler struct {
	scheduler    *scheduling.Scheduler
	availability *scheduling.AvailabilityStore
	metrics      *metrics.QueryMetrics
	logger       *logging.Logger
}

// NewAppointmentsHandler creates the handler. metrics may be nil.
func NewAppointmentsHandler(
	scheduler *scheduling.Scheduler,
	availability *scheduling.AvailabilityStore,
	m *metrics.QueryMetrics,
	logger *logging.Logger,
) *AppointmentsHandler {
	if scheduler == nil {
		panic("handlers: scheduler cannot be nil")
	}
	if availability == nil {
		panic("handlers: availability store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{
		scheduler:    scheduler,
		availability: availability,
		metrics:      m,
		logger:       logger,
	}
}

// ListSlots handles GET /api/v1/appointments/slots?date=YYYY-MM-DD.
// Without a date it returns the bookable dates of the rolling window.
func (h *AppointmentsHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeJSON(w, http.StatusOK, map[string]any{"dates": h.availability.Dates()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"slots": h.availability.AvailableSlots(date),
	})
}

type scheduleRequestBody struct {
	CitizenID    string `json:"citizen_id"`
	CitizenName  string `json:"citizen_name"`
	CitizenEmail string `json:"citizen_email"`
	Procedure    string `json:"procedure"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Notes        string `json:"notes,omitempty"`
}

// Schedule handles POST /api/v1/appointments.
func (h *AppointmentsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var body scheduleRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.CitizenID == "" || body.Date == "" || body.Time == "" {
		jsonError(w, "citizen_id, date and time are required", http.StatusBadRequest)
		return
	}

	result := h.scheduler.Schedule(r.Context(), scheduling.ScheduleRequest{
		CitizenID:    body.CitizenID,
		CitizenName:  body.CitizenName,
		CitizenEmail: body.CitizenEmail,
		Procedure:    body.Procedure,
		Date:         body.Date,
		Time:         body.Time,
		Notes:        body.Notes,
	})
	h.metrics.ObserveBooking("schedule", result.Success)

	if !result.Success {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"message": result.Message,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     result.Message,
		"appointment": result.Appointment,
	})
}

// Get handles GET /api/v1/appointments/{appointmentID}.
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	appt := h.scheduler.Get(id)
	if appt == nil {
		jsonError(w, "appointment not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles DELETE /admin/appointments/{appointmentID}.
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")

	result := h.scheduler.Cancel(r.Context(), id)
	h.metrics.ObserveBooking("cancel", result.Success)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
		if h.scheduler.Get(id) == nil {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, map[string]any{
		"success": result.Success,
		"message": result.Message,
	})
}
