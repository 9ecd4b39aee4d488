package knowledge

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/civitas-ai/citizen-assist-platform/internal/intent"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

var knowledgeTracer = otel.Tracer("civitas.internal.knowledge")

// DegradedAnswer is returned when answer generation fails. The conversation
// never surfaces an internal error to the citizen.
const DegradedAnswer = "Lo siento, en este momento no puedo procesar su consulta. Por favor intente nuevamente en unos minutos o acérquese a la oficina de atención al ciudadano."

const responderSystemPrompt = `Eres el asistente virtual de la municipalidad. Respondes consultas de los ciudadanos sobre trámites, requisitos, horarios y servicios municipales.

Reglas:
- Responde siempre en español, de forma clara y cordial.
- Usa únicamente la información de contexto provista. Si el contexto no cubre la consulta, indícalo y sugiere acercarse a la oficina correspondiente.
- No inventes requisitos, costos ni plazos.`

// Responder generates grounded answers for informational queries.
type Responder struct {
	client    intent.LLMClient
	retriever Retriever
	modelID   string
	topK      int
	timeout   time.Duration
	logger    *logging.Logger
}

// NewResponder creates an answer generator. retriever may be nil, in which
// case answers are generated without document context.
func NewResponder(client intent.LLMClient, retriever Retriever, modelID string, topK int, timeout time.Duration, logger *logging.Logger) *Responder {
	if client == nil {
		panic("knowledge: llm client cannot be nil")
	}
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{
		client:    client,
		retriever: retriever,
		modelID:   modelID,
		topK:      topK,
		timeout:   timeout,
		logger:    logger,
	}
}

// Answer produces a Spanish response to the query, grounded on retrieved
// documents and the recent conversation history. Any failure degrades to
// DegradedAnswer rather than an error.
func (r *Responder) Answer(ctx context.Context, topic, query string, history []intent.ChatMessage) string {
	ctx, span := knowledgeTracer.Start(ctx, "knowledge.answer")
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	system := []string{responderSystemPrompt}
	if r.retriever != nil {
		docs, err := r.retriever.Query(ctx, topic, query, r.topK)
		if err != nil {
			r.logger.Warn("knowledge retrieval failed, answering without context", "error", err)
		} else if len(docs) > 0 {
			system = append(system, "Información de contexto:\n- "+strings.Join(docs, "\n- "))
		}
	}

	messages := make([]intent.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, intent.ChatMessage{Role: intent.ChatRoleUser, Content: query})

	resp, err := r.client.Complete(ctx, intent.LLMRequest{
		Model:    r.modelID,
		System:   system,
		Messages: messages,
	})
	if err != nil {
		r.logger.Error("answer generation failed", "error", err)
		return DegradedAnswer
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		r.logger.Warn("answer generation returned empty text")
		return DegradedAnswer
	}
	return text
}
