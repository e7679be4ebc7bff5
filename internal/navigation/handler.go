package navigation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// Handler exposes the view selector.
type Handler struct {
	registry *Registry
	logger   *logging.Logger
}

func NewHandler(registry *Registry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{registry: registry, logger: logger}
}

// StateResponse describes the shell of a workspace.
type StateResponse struct {
	WorkspaceID string `json:"workspaceId"`
	Active      View   `json:"active"`
	Views       []View `json:"views"`
	Changed     bool   `json:"changed,omitempty"`
}

// Get handles GET /api/navigation
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shell, err := h.registry.Shell(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{WorkspaceID: shell.ID(), Active: shell.Active(), Views: Views()})
}

// Navigate handles POST /api/navigation
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	shell, err := h.registry.Shell(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	changed, err := shell.Navigate(View(req.View))
	if err != nil {
		if errors.Is(err, ErrUnknownView) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("navigation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{WorkspaceID: shell.ID(), Active: shell.Active(), Views: Views(), Changed: changed})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
