package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

var intentTracer = otel.Tracer("civitas.internal.intent")

// CaseType is the classified purpose of a citizen query.
type CaseType string

const (
	CaseSimpleInfo  CaseType = "SIMPLE_INFO"
	CaseAppointment CaseType = "APPOINTMENT"
	CaseComplex     CaseType = "COMPLEX_CASE"
)

// DefaultProcedure is used whenever the classifier cannot produce a specific
// procedure name.
const DefaultProcedure = "Información general"

// Result is the classifier output consumed by the query processor.
type Result struct {
	CaseType  CaseType `json:"case_type"`
	Procedure string   `json:"procedure_name"`
}

// Classifier maps a free-text citizen query to an intent. Implementations
// must never fail the conversation: any internal error resolves to
// SIMPLE_INFO with the default procedure.
type Classifier interface {
	Classify(ctx context.Context, query string) Result
}

const classifierPrompt = `Analiza la consulta de un ciudadano a la municipalidad y clasifícala. Responde SOLO con JSON.

Tipos:
- APPOINTMENT: el ciudadano quiere agendar, reservar o consultar una cita o turno
- COMPLEX_CASE: queja, reclamo, denuncia, conflicto legal o situación que requiere la intervención de un funcionario
- SIMPLE_INFO: cualquier otra consulta que solo necesita información

Consulta: %s

Responde con: {"case_type": "<APPOINTMENT|COMPLEX_CASE|SIMPLE_INFO>", "procedure_name": "<nombre del trámite solicitado>"}`

// LLMClassifier implements Classifier on top of an LLMClient.
type LLMClassifier struct {
	client  LLMClient
	modelID string
	timeout time.Duration
	logger  *logging.Logger
}

// NewLLMClassifier creates a classifier backed by the given client. A zero
// timeout disables the per-call deadline.
func NewLLMClassifier(client LLMClient, modelID string, timeout time.Duration, logger *logging.Logger) *LLMClassifier {
	if client == nil {
		panic("intent: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMClassifier{
		client:  client,
		modelID: modelID,
		timeout: timeout,
		logger:  logger,
	}
}

// fallbackResult is the safe default: never block the conversation over a
// classification failure.
func fallbackResult() Result {
	return Result{CaseType: CaseSimpleInfo, Procedure: DefaultProcedure}
}

// Classify asks the LLM for a strict-JSON intent and falls back to
// SIMPLE_INFO on any error, timeout, or malformed output.
func (c *LLMClassifier) Classify(ctx context.Context, query string) Result {
	ctx, span := intentTracer.Start(ctx, "intent.classify")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return fallbackResult()
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(classifierPrompt, query)
	resp, err := c.client.Complete(ctx, LLMRequest{
		Model:     c.modelID,
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: 100,
	})
	if err != nil {
		c.logger.Warn("intent classification failed, defaulting to SIMPLE_INFO", "error", err)
		return fallbackResult()
	}

	result, ok := ParseResult(resp.Text)
	if !ok {
		c.logger.Warn("intent classification produced unusable output", "raw", resp.Text)
		return fallbackResult()
	}

	span.SetAttributes(
		attribute.String("civitas.case_type", string(result.CaseType)),
		attribute.String("civitas.procedure", result.Procedure),
	)
	return result
}

// ParseResult extracts the intent JSON from raw model output. The model may
// wrap the object in prose; only the first {...} block is considered.
func ParseResult(raw string) (Result, bool) {
	content := strings.TrimSpace(raw)
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx < 0 || endIdx <= startIdx {
		return Result{}, false
	}
	content = content[startIdx : endIdx+1]

	var parsed struct {
		CaseType  string `json:"case_type"`
		Procedure string `json:"procedure_name"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Result{}, false
	}

	caseType := CaseType(strings.ToUpper(strings.TrimSpace(parsed.CaseType)))
	switch caseType {
	case CaseSimpleInfo, CaseAppointment, CaseComplex:
	default:
		return Result{}, false
	}

	procedure := strings.TrimSpace(parsed.Procedure)
	if procedure == "" {
		procedure = DefaultProcedure
	}
	return Result{CaseType: caseType, Procedure: procedure}, true
}
