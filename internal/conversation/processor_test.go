package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
	"github.com/civitas-ai/citizen-assist-platform/internal/scheduling"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// stubClassifier returns a fixed classification.
type stubClassifier struct {
	result intent.Result
}

func (s *stubClassifier) Classify(_ context.Context, _ string) intent.Result {
	return s.result
}

// stubAnswerer records its inputs and returns a fixed answer.
type stubAnswerer struct {
	answer      string
	lastTopic   string
	lastQuery   string
	lastHistory []intent.ChatMessage
}

func (s *stubAnswerer) Answer(_ context.Context, topic, query string, history []intent.ChatMessage) string {
	s.lastTopic = topic
	s.lastQuery = query
	s.lastHistory = history
	return s.answer
}

// memoryHistory is an in-memory HistoryStore.
type memoryHistory struct {
	saved map[string][]intent.ChatMessage
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{saved: make(map[string][]intent.ChatMessage)}
}

func (m *memoryHistory) Save(_ context.Context, id string, history []intent.ChatMessage) error {
	m.saved[id] = history
	return nil
}

func (m *memoryHistory) Load(_ context.Context, id string) ([]intent.ChatMessage, error) {
	return m.saved[id], nil
}

// processorFixtureNow is a Monday so the next day is a weekday.
var processorFixtureNow = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func newFixtureAvailability() *scheduling.AvailabilityStore {
	return scheduling.NewAvailabilityStore(scheduling.AvailabilityConfig{
		WindowDays:   7,
		SlotCapacity: 1,
		Now:          func() time.Time { return processorFixtureNow },
	})
}

func newTestProcessor(classifier intent.Classifier, answerer Answerer, opts ...ProcessorOption) (*QueryProcessor, *scheduling.AvailabilityStore, *casework.Service) {
	availability := newFixtureAvailability()
	cases := casework.NewService(logging.New("error"))
	p := NewQueryProcessor(classifier, answerer, availability, cases, logging.New("error"), opts...)
	return p, availability, cases
}

func testSession() Session {
	return Session{
		CitizenID:      "CIT-001",
		Name:           "María González",
		Email:          "maria@example.com",
		ConversationID: "conv-1",
	}
}

func TestAppointmentQueryOffersSlotWithoutBooking(t *testing.T) {
	classifier := &stubClassifier{result: intent.Result{
		CaseType:  intent.CaseAppointment,
		Procedure: "Licencia de construcción",
	}}
	p, availability, _ := newTestProcessor(classifier, &stubAnswerer{})

	envelope, err := p.ProcessQuery(context.Background(), QueryRequest{
		Session: testSession(),
		Query:   "quiero agendar un turno para licencia de construcción",
	})
	require.NoError(t, err)

	assert.Equal(t, intent.CaseAppointment, envelope.CaseType)
	assert.True(t, envelope.HasAction(ActionOfferAppointment))
	require.NotNil(t, envelope.Appointment)
	assert.Equal(t, "Licencia de construcción", envelope.Appointment.Procedure)
	assert.Equal(t, "2025-03-04", envelope.Appointment.EarliestDate)
	assert.Nil(t, envelope.Case)

	// No booking committed: every slot of the earliest date is still free.
	for hour, capacity := range availability.AvailableSlots("2025-03-04") {
		assert.Equal(t, 1, capacity, "slot %s", hour)
	}
}

func TestComplexQueryOpensHighPriorityCase(t *testing.T) {
	classifier := &stubClassifier{result: intent.Result{
		CaseType:  intent.CaseComplex,
		Procedure: "Queja",
	}}
	p, _, cases := newTestProcessor(classifier, &stubAnswerer{})

	envelope, err := p.ProcessQuery(context.Background(), QueryRequest{
		Session: testSession(),
		Query:   "quiero presentar una queja urgente por mal servicio",
	})
	require.NoError(t, err)

	assert.Equal(t, intent.CaseComplex, envelope.CaseType)
	assert.True(t, envelope.HasAction(ActionCreateComplexCase))
	require.NotNil(t, envelope.Case)
	assert.Equal(t, casework.DeptComplaints, envelope.Case.Department)
	assert.Equal(t, casework.PriorityHigh, envelope.Case.Priority)
	assert.Equal(t, casework.StatusPending, envelope.Case.Status)
	assert.Nil(t, envelope.Appointment)

	stored := cases.GetStatus(envelope.Case.ID)
	require.NotNil(t, stored)
	assert.Equal(t, casework.StatusPending, stored.Status)
}

func TestSimpleInfoQueryAnswersWithHistory(t *testing.T) {
	classifier := &stubClassifier{result: intent.Result{
		CaseType:  intent.CaseSimpleInfo,
		Procedure: "Información general",
	}}
	answerer := &stubAnswerer{answer: "La oficina atiende de 9 a 17."}
	history := newMemoryHistory()
	history.saved["conv-1"] = []intent.ChatMessage{
		{Role: intent.ChatRoleUser, Content: "hola"},
		{Role: intent.ChatRoleAssistant, Content: "Hola, ¿en qué puedo ayudarle?"},
	}
	p, _, _ := newTestProcessor(classifier, answerer, WithHistoryStore(history))

	envelope, err := p.ProcessQuery(context.Background(), QueryRequest{
		Session: testSession(),
		Query:   "¿cuál es el horario de atención?",
	})
	require.NoError(t, err)

	assert.Equal(t, intent.CaseSimpleInfo, envelope.CaseType)
	assert.True(t, envelope.HasAction(ActionProvideInformation))
	assert.Equal(t, "La oficina atiende de 9 a 17.", envelope.PrimaryResponse)
	assert.Len(t, answerer.lastHistory, 2)

	saved := history.saved["conv-1"]
	require.Len(t, saved, 4)
	assert.Equal(t, "¿cuál es el horario de atención?", saved[2].Content)
	assert.Equal(t, "La oficina atiende de 9 a 17.", saved[3].Content)
}

func TestClassifierFailureNeverCrashesProcessor(t *testing.T) {
	// A failing LLM degrades inside the classifier to SIMPLE_INFO.
	failing := intent.NewLLMClassifier(&failingLLM{}, "test-model", 0, logging.New("error"))
	answerer := &stubAnswerer{answer: "Respuesta segura."}
	p, _, _ := newTestProcessor(failing, answerer)

	envelope, err := p.ProcessQuery(context.Background(), QueryRequest{
		Session: testSession(),
		Query:   "???",
	})
	require.NoError(t, err)

	assert.Equal(t, intent.CaseSimpleInfo, envelope.CaseType)
	assert.Equal(t, "Respuesta segura.", envelope.PrimaryResponse)
}

func TestAppointmentQueryWithEmptyWindow(t *testing.T) {
	classifier := &stubClassifier{result: intent.Result{
		CaseType:  intent.CaseAppointment,
		Procedure: "Renovación de DNI",
	}}
	// A Friday with a one-day window puts the whole window on a weekend.
	friday := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	availability := scheduling.NewAvailabilityStore(scheduling.AvailabilityConfig{
		WindowDays:   1,
		SlotCapacity: 1,
		Now:          func() time.Time { return friday },
	})
	cases := casework.NewService(logging.New("error"))
	p := NewQueryProcessor(classifier, &stubAnswerer{}, availability, cases, logging.New("error"))

	envelope, err := p.ProcessQuery(context.Background(), QueryRequest{
		Session: testSession(),
		Query:   "necesito un turno",
	})
	require.NoError(t, err)

	assert.Equal(t, intent.CaseAppointment, envelope.CaseType)
	assert.Nil(t, envelope.Appointment)
	assert.Contains(t, envelope.PrimaryResponse, "no hay turnos disponibles")
}

type failingLLM struct{}

func (f *failingLLM) Complete(_ context.Context, _ intent.LLMRequest) (intent.LLMResponse, error) {
	return intent.LLMResponse{}, context.DeadlineExceeded
}
