package conversation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
	"github.com/civitas-ai/citizen-assist-platform/internal/scheduling"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

var conversationTracer = otel.Tracer("civitas.internal.conversation")

// maxHistoryMessages bounds the stored history per conversation.
const maxHistoryMessages = 20

// Answerer generates a grounded textual answer for informational queries.
// Implementations degrade internally; Answer never fails.
type Answerer interface {
	Answer(ctx context.Context, topic, query string, history []intent.ChatMessage) string
}

// QueryObserver records processed queries for metrics.
type QueryObserver interface {
	QueryProcessed(caseType string, duration time.Duration)
}

// QueryProcessor runs one state transition per citizen query: classify the
// intent, then answer, offer an appointment slot, or open a case.
type QueryProcessor struct {
	classifier   intent.Classifier
	answerer     Answerer
	availability *scheduling.AvailabilityStore
	cases        *casework.Service
	history      HistoryStore
	observer     QueryObserver
	logger       *logging.Logger
}

var _ Service = (*QueryProcessor)(nil)

// ProcessorOption configures optional collaborators.
type ProcessorOption func(*QueryProcessor)

// WithHistoryStore enables conversation history persistence.
func WithHistoryStore(store HistoryStore) ProcessorOption {
	return func(p *QueryProcessor) {
		p.history = store
	}
}

// WithQueryObserver enables metrics recording.
func WithQueryObserver(observer QueryObserver) ProcessorOption {
	return func(p *QueryProcessor) {
		p.observer = observer
	}
}

// NewQueryProcessor wires the processor with its required collaborators.
func NewQueryProcessor(
	classifier intent.Classifier,
	answerer Answerer,
	availability *scheduling.AvailabilityStore,
	cases *casework.Service,
	logger *logging.Logger,
	opts ...ProcessorOption,
) *QueryProcessor {
	if classifier == nil {
		panic("conversation: classifier cannot be nil")
	}
	if answerer == nil {
		panic("conversation: answerer cannot be nil")
	}
	if availability == nil {
		panic("conversation: availability store cannot be nil")
	}
	if cases == nil {
		panic("conversation: case service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &QueryProcessor{
		classifier:   classifier,
		answerer:     answerer,
		availability: availability,
		cases:        cases,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessQuery classifies the query and returns the branch envelope. The
// returned error is reserved for transport-level problems; classification and
// generation failures degrade inside their collaborators and never bubble up.
func (p *QueryProcessor) ProcessQuery(ctx context.Context, req QueryRequest) (*Envelope, error) {
	ctx, span := conversationTracer.Start(ctx, "conversation.process_query")
	defer span.End()

	start := time.Now()
	result := p.classifier.Classify(ctx, req.Query)
	span.SetAttributes(attribute.String("civitas.case_type", string(result.CaseType)))

	var envelope *Envelope
	switch result.CaseType {
	case intent.CaseAppointment:
		envelope = p.offerAppointment(result)
	case intent.CaseComplex:
		envelope = p.openCase(ctx, req, result)
	default:
		envelope = p.answerQuery(ctx, req, result)
	}

	p.logger.Info("query processed",
		"citizen_id", req.Session.CitizenID,
		"conversation_id", req.Session.ConversationID,
		"case_type", envelope.CaseType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if p.observer != nil {
		p.observer.QueryProcessed(string(envelope.CaseType), time.Since(start))
	}
	return envelope, nil
}

func (p *QueryProcessor) answerQuery(ctx context.Context, req QueryRequest, result intent.Result) *Envelope {
	history := p.loadHistory(ctx, req.Session.ConversationID)
	topic := string(casework.RouteToDepartment(req.Query))

	answer := p.answerer.Answer(ctx, topic, req.Query, history)
	p.saveHistory(ctx, req.Session.ConversationID, history, req.Query, answer)

	return &Envelope{
		CaseType:        intent.CaseSimpleInfo,
		PrimaryResponse: answer,
		Actions:         []Action{ActionProvideInformation},
		Procedure:       result.Procedure,
	}
}

func (p *QueryProcessor) offerAppointment(result intent.Result) *Envelope {
	earliest := p.availability.EarliestDate()
	if earliest == "" {
		return &Envelope{
			CaseType:        intent.CaseAppointment,
			PrimaryResponse: "En este momento no hay turnos disponibles. Por favor intente nuevamente más adelante.",
			Actions:         []Action{ActionProvideInformation},
			Procedure:       result.Procedure,
		}
	}

	slots := p.availability.AvailableSlots(earliest)
	times := make([]string, 0, len(slots))
	for hour, capacity := range slots {
		if capacity > 0 {
			times = append(times, hour)
		}
	}
	// Half-hour slot labels sort correctly as strings ("09:00" < "14:30").
	sort.Strings(times)

	return &Envelope{
		CaseType: intent.CaseAppointment,
		PrimaryResponse: fmt.Sprintf(
			"Puedo ayudarle a agendar una cita para %s. La fecha más próxima disponible es %s. Confirme sus datos para completar la reserva.",
			result.Procedure, earliest,
		),
		Actions:   []Action{ActionOfferAppointment},
		Procedure: result.Procedure,
		Appointment: &AppointmentOffer{
			Procedure:      result.Procedure,
			EarliestDate:   earliest,
			AvailableTimes: times,
		},
	}
}

func (p *QueryProcessor) openCase(ctx context.Context, req QueryRequest, result intent.Result) *Envelope {
	priority := casework.DeterminePriority(req.Query)
	created := p.cases.CreateCase(ctx, casework.CreateRequest{
		CitizenID:    req.Session.CitizenID,
		CitizenName:  req.Session.Name,
		CitizenEmail: req.Session.Email,
		Description:  req.Query,
		Priority:     priority,
	})

	return &Envelope{
		CaseType:        intent.CaseComplex,
		PrimaryResponse: created.Message,
		Actions:         []Action{ActionCreateComplexCase},
		Procedure:       result.Procedure,
		Case:            created.Case,
	}
}

func (p *QueryProcessor) loadHistory(ctx context.Context, conversationID string) []intent.ChatMessage {
	if p.history == nil || conversationID == "" {
		return nil
	}
	history, err := p.history.Load(ctx, conversationID)
	if err != nil {
		p.logger.Warn("failed to load conversation history", "conversation_id", conversationID, "error", err)
		return nil
	}
	return history
}

func (p *QueryProcessor) saveHistory(ctx context.Context, conversationID string, history []intent.ChatMessage, query, answer string) {
	if p.history == nil || conversationID == "" {
		return
	}
	history = append(history,
		intent.ChatMessage{Role: intent.ChatRoleUser, Content: query},
		intent.ChatMessage{Role: intent.ChatRoleAssistant, Content: answer},
	)
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	if err := p.history.Save(ctx, conversationID, history); err != nil {
		p.logger.Warn("failed to save conversation history", "conversation_id", conversationID, "error", err)
	}
}
