package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/civitas-ai/citizen-assist-platform/internal/http/handlers"
	httpmiddleware "github.com/civitas-ai/citizen-assist-platform/internal/http/middleware"
	"github.com/civitas-ai/citizen-assist-platform/internal/webchat"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Queries            *handlers.QueriesHandler
	Appointments       *handlers.AppointmentsHandler
	Cases              *handlers.CasesHandler
	Knowledge          *handlers.KnowledgeHandler
	Webchat            *webchat.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.Queries != nil {
			api.Post("/queries", cfg.Queries.ProcessQuery)
		}
		if cfg.Appointments != nil {
			api.Get("/appointments/slots", cfg.Appointments.ListSlots)
			api.Post("/appointments", cfg.Appointments.Schedule)
			api.Get("/appointments/{appointmentID}", cfg.Appointments.Get)
		}
		if cfg.Cases != nil {
			api.Post("/cases", cfg.Cases.Create)
			api.Get("/cases/{caseID}", cfg.Cases.Get)
		}
	})

	if cfg.Webchat != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Get("/ws", cfg.Webchat.HandleWebSocket)
			chat.Post("/message", cfg.Webchat.HandleMessage)
		})
	}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, cfg.Logger))
		if cfg.Cases != nil {
			admin.Put("/cases/{caseID}/status", cfg.Cases.UpdateStatus)
		}
		if cfg.Appointments != nil {
			admin.Delete("/appointments/{appointmentID}", cfg.Appointments.Cancel)
		}
		if cfg.Knowledge != nil {
			admin.Post("/knowledge", cfg.Knowledge.Ingest)
		}
	})

	return r
}
