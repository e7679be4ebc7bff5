package prospecting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// SessionFunc resolves the mounted prospecting session for the request.
type SessionFunc func(ctx context.Context) (*Session, error)

// Handler serves the prospecting endpoints.
type Handler struct {
	session SessionFunc
	logger  *logging.Logger
}

func NewHandler(session SessionFunc, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{session: session, logger: logger}
}

type searchRequest struct {
	Niche    string `json:"niche"`
	Location string `json:"location"`
}

type promoteRequest struct {
	Key string `json:"key"`
}

// Get handles GET /api/prospecting
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// Niches handles GET /api/prospecting/niches
func (h *Handler) Niches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"niches": SuggestedNiches()})
}

// Search handles POST /api/prospecting/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}
	// A search outlives the request that started it; results land in the session.
	if _, err := session.Search(context.WithoutCancel(r.Context()), req.Niche, req.Location); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// Promote handles POST /api/prospecting/promote
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}
	result, err := session.Promote(r.Context(), req.Key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Promoted {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := h.session(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return nil, false
	}
	return session, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNicheRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrProspectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, leads.ErrDuplicateLead):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("prospecting operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
