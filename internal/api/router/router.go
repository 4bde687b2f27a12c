// Package router assembles the HTTP surface of the bridge: provider
// webhooks, JWT-guarded call actions, the notification websocket, and the
// operational endpoints.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onehash/smartflow-bridge/internal/callsync"
	httpmiddleware "github.com/onehash/smartflow-bridge/internal/http/middleware"
	"github.com/onehash/smartflow-bridge/internal/notify"
	"github.com/onehash/smartflow-bridge/internal/users"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	CallsHandler    *callsync.Handler
	NotifyHandler   *notify.Handler
	UsersHandler    *users.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
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

	// Public endpoints: provider webhooks and health checks. The provider
	// retries on non-2xx, so webhook handlers always answer 200 with a
	// success flag in the body.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.CallsHandler != nil {
			public.Post("/webhooks/smartflow/calls", cfg.CallsHandler.Webhook)
		}
		if cfg.NotifyHandler != nil {
			public.Post("/webhooks/smartflow/inbound", cfg.NotifyHandler.InboundCall)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// CRM-facing endpoints, JWT-protected.
	if cfg.AdminAuthSecret != "" {
		auth := httpmiddleware.AdminJWT(cfg.AdminAuthSecret)

		r.Route("/api", func(api chi.Router) {
			api.Use(auth)
			if cfg.CallsHandler != nil {
				api.Post("/calls/initiate", cfg.CallsHandler.InitiateCall)
				api.Post("/calls/hangup", cfg.CallsHandler.HangupCall)
				api.Post("/calls/sync", cfg.CallsHandler.SyncRecords)
			}
			if cfg.UsersHandler != nil {
				api.Post("/users/sync", cfg.UsersHandler.Sync)
			}
		})

		if cfg.NotifyHandler != nil {
			r.With(auth).Get("/ws/notifications", cfg.NotifyHandler.Websocket)
		}
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
