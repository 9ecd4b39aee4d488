package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/civitas-ai/citizen-assist-platform/internal/knowledge"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// KnowledgeHandler lets back-office staff load municipal documents into the
// retrieval store. Documents are persisted first, then indexed, so a restart
// rebuilds the same corpus from Redis.
type KnowledgeHandler struct {
	repo     knowledge.Repository
	ingestor knowledge.Ingestor
	logger   *logging.Logger
}

// NewKnowledgeHandler creates the handler.
func NewKnowledgeHandler(repo knowledge.Repository, ingestor knowledge.Ingestor, logger *logging.Logger) *KnowledgeHandler {
	if repo == nil {
		panic("handlers: knowledge repository cannot be nil")
	}
	if ingestor == nil {
		panic("handlers: knowledge ingestor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &KnowledgeHandler{repo: repo, ingestor: ingestor, logger: logger}
}

type ingestRequest struct {
	// Topic is the department the documents belong to; empty means shared
	// across all departments.
	Topic     string   `json:"topic"`
	Documents []string `json:"documents"`
}

// Ingest handles POST /admin/knowledge.
func (h *KnowledgeHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "cuerpo de solicitud inválido", http.StatusBadRequest)
		return
	}

	docs := make([]string, 0, len(req.Documents))
	for _, doc := range req.Documents {
		if trimmed := strings.TrimSpace(doc); trimmed != "" {
			docs = append(docs, trimmed)
		}
	}
	if len(docs) == 0 {
		jsonError(w, "se requiere al menos un documento", http.StatusBadRequest)
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if err := h.repo.AppendDocuments(r.Context(), topic, docs); err != nil {
		h.logger.Error("knowledge persistence failed", "topic", topic, "error", err)
		jsonError(w, "no se pudieron guardar los documentos", http.StatusInternalServerError)
		return
	}
	if err := h.ingestor.AddDocuments(r.Context(), topic, docs); err != nil {
		h.logger.Error("knowledge indexing failed", "topic", topic, "error", err)
		jsonError(w, "documentos guardados pero no indexados; reinicie para reindexar", http.StatusInternalServerError)
		return
	}

	h.logger.Info("knowledge documents ingested", "topic", topic, "count", len(docs))
	writeJSON(w, http.StatusCreated, map[string]any{
		"topic":    topic,
		"ingested": len(docs),
	})
}
