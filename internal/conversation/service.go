package conversation

import (
	"context"

	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
)

// Action tells the caller what to render after a processed query.
type Action string

const (
	ActionProvideInformation Action = "provide_information"
	ActionOfferAppointment   Action = "offer_appointment"
	ActionCreateComplexCase  Action = "create_complex_case"
)

// Session identifies the citizen behind a query. It is passed explicitly on
// every request; the processor keeps no ambient session state.
type Session struct {
	CitizenID      string `json:"citizen_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ConversationID string `json:"conversation_id"`
}

// QueryRequest is one citizen turn.
type QueryRequest struct {
	Session Session `json:"session"`
	Query   string  `json:"query"`
}

// AppointmentOffer proposes a slot to the citizen. Booking happens later,
// through the scheduling API, once the citizen confirms.
type AppointmentOffer struct {
	Procedure      string   `json:"procedure"`
	EarliestDate   string   `json:"earliest_date"`
	AvailableTimes []string `json:"available_times,omitempty"`
}

// Envelope is the uniform result returned for every query. Exactly one of
// Appointment and Case is set, matching the branch taken.
type Envelope struct {
	CaseType        intent.CaseType   `json:"case_type"`
	PrimaryResponse string            `json:"primary_response"`
	Actions         []Action          `json:"actions"`
	Procedure       string            `json:"procedure"`
	Appointment     *AppointmentOffer `json:"appointment_data,omitempty"`
	Case            *casework.Case    `json:"case,omitempty"`
}

// HasAction reports whether the envelope carries the given action.
func (e *Envelope) HasAction(action Action) bool {
	for _, a := range e.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Service processes citizen queries. Implemented by the QueryProcessor and
// by the queue-backed Orchestrator that wraps it.
type Service interface {
	ProcessQuery(ctx context.Context, req QueryRequest) (*Envelope, error)
}
