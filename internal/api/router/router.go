package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lamitex/lamitex-crm/internal/chat"
	"github.com/lamitex/lamitex-crm/internal/dashboard"
	httpmiddleware "github.com/lamitex/lamitex-crm/internal/http/middleware"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/navigation"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/internal/pipeline"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	NavigationHandler  *navigation.Handler
	LeadsHandler       *leads.Handler
	PipelineHandler    *pipeline.Handler
	ProspectingHandler *prospecting.Handler
	ChatHandler        *chat.Handler
	DashboardHandler   *dashboard.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Limiter guards the routes that call the generative AI backend. Nil
	// disables rate limiting.
	Limiter        httpmiddleware.Limiter
	LimiterBackend string
	Metrics        *metrics.CRMMetrics
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	outbound := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		outbound = httpmiddleware.Limit(cfg.Limiter, httpmiddleware.WorkspaceKey, cfg.LimiterBackend, cfg.Metrics)
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Workspace-scoped API
	r.Route("/api", func(api chi.Router) {
		api.Use(requireWorkspace)

		if cfg.NavigationHandler != nil {
			api.Get("/navigation", cfg.NavigationHandler.Get)
			api.Post("/navigation", cfg.NavigationHandler.Navigate)
		}

		if cfg.DashboardHandler != nil {
			api.Get("/dashboard", cfg.DashboardHandler.Get)
			api.Get("/dashboard/charts/{kind}", cfg.DashboardHandler.Chart)
			api.Get("/catalog", cfg.DashboardHandler.Catalog)
		}

		if cfg.LeadsHandler != nil {
			api.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.List)
				r.Post("/", cfg.LeadsHandler.Create)
				r.Get("/{leadID}", cfg.LeadsHandler.Get)
				r.Patch("/{leadID}/status", cfg.LeadsHandler.UpdateStatus)
				r.Patch("/{leadID}/value", cfg.LeadsHandler.UpdateValue)
			})
		}

		if cfg.PipelineHandler != nil {
			api.Route("/board", func(r chi.Router) {
				r.Get("/", cfg.PipelineHandler.Get)
				r.Post("/drag", cfg.PipelineHandler.DragStart)
				r.Post("/dragover", cfg.PipelineHandler.DragOver)
				r.Post("/drop", cfg.PipelineHandler.Drop)
			})
		}

		if cfg.ProspectingHandler != nil {
			api.Route("/prospecting", func(r chi.Router) {
				r.Get("/", cfg.ProspectingHandler.Get)
				r.Get("/niches", cfg.ProspectingHandler.Niches)
				r.With(outbound).Post("/search", cfg.ProspectingHandler.Search)
				r.Post("/promote", cfg.ProspectingHandler.Promote)
			})
		}

		if cfg.ChatHandler != nil {
			api.Route("/chat", func(r chi.Router) {
				r.Get("/", cfg.ChatHandler.HandleState)
				r.Post("/draft", cfg.ChatHandler.HandleDraft)
				r.With(outbound).Post("/messages", cfg.ChatHandler.HandleMessage)
				r.Post("/attachments/image", cfg.ChatHandler.HandleAttachImage)
				r.Delete("/attachment", cfg.ChatHandler.HandleRemoveAttachment)
				r.Post("/recording/start", cfg.ChatHandler.HandleRecordingStart)
				r.Post("/recording/chunk", cfg.ChatHandler.HandleRecordingChunk)
				r.Post("/recording/stop", cfg.ChatHandler.HandleRecordingStop)
				r.With(outbound).Get("/ws", cfg.ChatHandler.HandleWebSocket)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
