package callsync

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/onehash/smartflow-bridge/internal/callevent"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Handler exposes the call webhook and the outbound call actions.
type Handler struct {
	processor *Processor
	actions   *Actions
	records   *RecordsSync
	logger    *logging.Logger
}

// NewHandler creates a callsync handler.
func NewHandler(processor *Processor, actions *Actions, records *RecordsSync, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{processor: processor, actions: actions, records: records, logger: logger}
}

// Webhook handles POST /webhooks/smartflow/calls. The provider retries on
// non-2xx, so the status is always 200 and the body carries the outcome.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		writeResult(w, failure("error reading request body"))
		return
	}
	evt, err := callevent.Parse(body)
	if err != nil {
		h.logger.Error("failed to parse webhook body", "error", err)
		writeResult(w, failure("invalid webhook data: malformed payload"))
		return
	}
	writeResult(w, h.processor.Process(r.Context(), evt))
}

type initiateCallRequest struct {
	LeadID    string `json:"lead_id"`
	AgentName string `json:"agent_name"`
}

// InitiateCall handles POST /api/calls/initiate.
func (h *Handler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	var req initiateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, failure("invalid request body"))
		return
	}
	writeResult(w, h.actions.Initiate(r.Context(), req.LeadID, req.AgentName))
}

type hangupCallRequest struct {
	LeadID string `json:"lead_id"`
}

// HangupCall handles POST /api/calls/hangup.
func (h *Handler) HangupCall(w http.ResponseWriter, r *http.Request) {
	var req hangupCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, failure("invalid request body"))
		return
	}
	writeResult(w, h.actions.Hangup(r.Context(), req.LeadID))
}

type syncRecordsResponse struct {
	Result
	SyncSummary
}

// SyncRecords handles POST /api/calls/sync, the manual trigger for the
// scheduled call-records poll.
func (h *Handler) SyncRecords(w http.ResponseWriter, r *http.Request) {
	summary, err := h.records.Run(r.Context())
	if err != nil {
		writeJSON(w, syncRecordsResponse{Result: failure("error syncing call records: " + err.Error())})
		return
	}
	writeJSON(w, syncRecordsResponse{
		Result:      success("call records synced"),
		SyncSummary: summary,
	})
}

func writeResult(w http.ResponseWriter, res Result) {
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
