package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/observability/metrics"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// CasesHandler exposes case creation, lookup, and admin status updates.
type CasesHandler struct {
	cases   *casework.Service
	metrics *metrics.QueryMetrics
	logger  *logging.Logger
}

// NewCasesHandler creates the handler. metrics may be nil.
func NewCasesHandler(cases *casework.Service, m *metrics.QueryMetrics, logger *logging.Logger) *CasesHandler {
	if cases == nil {
		panic("handlers: case service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CasesHandler{
		cases:   cases,
		metrics: m,
		logger:  logger,
	}
}

type createCaseBody struct {
	CitizenID    string `json:"citizen_id"`
	CitizenName  string `json:"citizen_name"`
	CitizenEmail string `json:"citizen_email"`
	Description  string `json:"description"`
	Priority     string `json:"priority,omitempty"`
}

// Create handles POST /api/v1/cases.
func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createCaseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		jsonError(w, "description is required", http.StatusBadRequest)
		return
	}

	priority := casework.Priority(body.Priority)
	if priority == "" {
		priority = casework.DeterminePriority(body.Description)
	}

	result := h.cases.CreateCase(r.Context(), casework.CreateRequest{
		CitizenID:    body.CitizenID,
		CitizenName:  body.CitizenName,
		CitizenEmail: body.CitizenEmail,
		Description:  body.Description,
		Priority:     priority,
	})
	h.metrics.ObserveCaseCreated(string(result.Case.Department), string(result.Case.Priority))

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": result.Message,
		"case":    result.Case,
	})
}

// Get handles GET /api/v1/cases/{caseID}.
func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "caseID")
	c := h.cases.GetStatus(id)
	if c == nil {
		jsonError(w, "case not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type updateStatusBody struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /admin/cases/{caseID}/status.
func (h *CasesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "caseID")

	var body updateStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result := h.cases.UpdateStatus(r.Context(), id, casework.CaseStatus(body.Status))
	if !result.Success {
		status := http.StatusUnprocessableEntity
		if h.cases.GetStatus(id) == nil {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"message": result.Message,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": result.Message,
		"case":    result.Case,
	})
}
