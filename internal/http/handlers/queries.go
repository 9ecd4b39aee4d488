package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/civitas-ai/citizen-assist-platform/internal/conversation"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// QueriesHandler accepts citizen queries and returns the response envelope.
type QueriesHandler struct {
	dispatcher conversation.Service
	logger     *logging.Logger
}

// NewQueriesHandler creates the handler.
func NewQueriesHandler(dispatcher conversation.Service, logger *logging.Logger) *QueriesHandler {
	if dispatcher == nil {
		panic("handlers: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QueriesHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ProcessQuery handles POST /api/v1/queries.
func (h *QueriesHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req conversation.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.Session.ConversationID == "" {
		req.Session.ConversationID = uuid.NewString()
	}

	envelope, err := h.dispatcher.ProcessQuery(r.Context(), req)
	if err != nil {
		if errors.Is(err, conversation.ErrOrchestratorClosed) {
			jsonError(w, "service shutting down", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("query processing failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": req.Session.ConversationID,
		"envelope":        envelope,
	})
}
