package users

import (
	"encoding/json"
	"net/http"

	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Handler exposes the provider user import endpoint.
type Handler struct {
	importer *Importer
	logger   *logging.Logger
}

// NewHandler creates a users handler.
func NewHandler(importer *Importer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{importer: importer, logger: logger}
}

type syncUsersResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ImportSummary
}

// Sync handles POST /api/users/sync: one pull of the provider user list.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	summary, err := h.importer.Import(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err != nil {
		h.logger.Error("provider user sync failed", "error", err)
		json.NewEncoder(w).Encode(syncUsersResponse{
			Success: false,
			Message: "error syncing users: " + err.Error(),
		})
		return
	}

	message := "users synced successfully"
	if summary.AllExisting {
		message = "all users already exist"
	}
	json.NewEncoder(w).Encode(syncUsersResponse{
		Success:       true,
		Message:       message,
		ImportSummary: summary,
	})
}
