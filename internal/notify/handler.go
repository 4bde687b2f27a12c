package notify

import (
	"encoding/json"
	"net/http"

	"github.com/onehash/smartflow-bridge/internal/http/middleware"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Handler exposes the inbound-call webhook and the notification websocket.
type Handler struct {
	service *Service
	hub     *Hub
	logger  *logging.Logger
}

// NewHandler creates a notify handler.
func NewHandler(service *Service, hub *Hub, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, hub: hub, logger: logger}
}

type inboundCallRequest struct {
	CallerIDNumber      string `json:"caller_id_number"`
	AnsweredAgentNumber string `json:"answered_agent_number"`
}

// InboundCall handles POST /webhooks/smartflow/inbound. The provider treats
// non-2xx as a delivery failure, so the outcome rides in the body and the
// status is always 200.
func (h *Handler) InboundCall(w http.ResponseWriter, r *http.Request) {
	var req inboundCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode inbound call webhook", "error", err)
		writeJSON(w, Outcome{Success: false, Message: "invalid request body"})
		return
	}
	writeJSON(w, h.service.NotifyInboundCall(r.Context(), req.CallerIDNumber, req.AnsweredAgentNumber))
}

// Websocket handles GET /ws/notifications. The JWT middleware has already
// authenticated the request; the token subject is the CRM user id.
func (h *Handler) Websocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.hub.ServeWS(w, r, userID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
