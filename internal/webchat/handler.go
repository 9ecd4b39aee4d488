package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/civitas-ai/citizen-assist-platform/internal/conversation"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// Handler bridges the citizen chat widget to the query dispatcher over
// WebSocket, with an HTTP fallback for environments without sockets.
type Handler struct {
	dispatcher conversation.Service
	logger     *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // conversationID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	CitizenID string `json:"citizen_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string                 `json:"type"` // "message", "typing", "session", "pong", "error"
	Text      string                 `json:"text,omitempty"`
	Role      string                 `json:"role,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Envelope  *conversation.Envelope `json:"envelope,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(dispatcher conversation.Service, logger *logging.Logger) *Handler {
	if dispatcher == nil {
		panic("webchat: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
		sessions:   make(map[string]*wsConn),
	}
}

// ConversationID builds the canonical conversation ID for a widget session.
func ConversationID(sessionID string) string {
	return "webchat:" + sessionID
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	convID := ConversationID(sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	wsc := &wsConn{conn: conn}
	h.mu.Lock()
	h.sessions[convID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[convID] == wsc {
			delete(h.sessions, convID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.sendToSession(convID, OutboundMessage{Type: "typing"})
		out := h.process(r.Context(), sessionID, msg)
		h.sendToSession(convID, out)
	}
}

func (h *Handler) process(ctx context.Context, sessionID string, msg InboundMessage) OutboundMessage {
	envelope, err := h.dispatcher.ProcessQuery(ctx, conversation.QueryRequest{
		Session: conversation.Session{
			CitizenID:      msg.CitizenID,
			Name:           msg.Name,
			Email:          msg.Email,
			ConversationID: ConversationID(sessionID),
		},
		Query: msg.Text,
	})
	if err != nil {
		h.logger.Error("webchat: query failed", "session_id", sessionID, "error", err)
		return OutboundMessage{
			Type: "error",
			Text: "Lo sentimos, ocurrió un error. Por favor intente nuevamente.",
		}
	}

	return OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      envelope.PrimaryResponse,
		SessionID: sessionID,
		Envelope:  envelope,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) sendToSession(convID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[convID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if msg.SessionID == "" {
		msg.SessionID = generateSessionID()
	}

	out := h.process(r.Context(), msg.SessionID, msg)
	out.SessionID = msg.SessionID

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
