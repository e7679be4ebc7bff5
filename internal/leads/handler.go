package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// RepositoryFunc resolves the lead collection owned by the request's workspace.
type RepositoryFunc func(ctx context.Context) (Repository, error)

// Handler handles HTTP requests for leads
type Handler struct {
	repo   RepositoryFunc
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo RepositoryFunc, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads []Lead `json:"leads"`
	Count int    `json:"count"`
}

// List handles GET /api/leads
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.resolve(w, r)
	if !ok {
		return
	}
	leads, err := repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, ListLeadsResponse{Leads: leads, Count: len(leads)})
}

// Get handles GET /api/leads/{leadID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.resolve(w, r)
	if !ok {
		return
	}
	lead, err := repo.GetByID(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lead)
}

// Create handles POST /api/leads
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	repo, ok := h.resolve(w, r)
	if !ok {
		return
	}

	lead, err := repo.Add(r.Context(), req.Lead())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("lead created", "id", lead.ID, "company", lead.CompanyName)
	h.writeJSON(w, http.StatusCreated, lead)
}

// UpdateStatusRequest is the body of PATCH /api/leads/{leadID}/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/leads/{leadID}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	repo, ok := h.resolve(w, r)
	if !ok {
		return
	}

	lead, err := repo.UpdateStatus(r.Context(), chi.URLParam(r, "leadID"), status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("lead status updated", "id", lead.ID, "status", lead.Status)
	h.writeJSON(w, http.StatusOK, lead)
}

// UpdateValueRequest is the body of PATCH /api/leads/{leadID}/value
type UpdateValueRequest struct {
	Value *float64 `json:"value"`
}

// UpdateValue handles PATCH /api/leads/{leadID}/value
func (h *Handler) UpdateValue(w http.ResponseWriter, r *http.Request) {
	var req UpdateValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	repo, ok := h.resolve(w, r)
	if !ok {
		return
	}

	lead, err := repo.UpdateValue(r.Context(), chi.URLParam(r, "leadID"), req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (Repository, bool) {
	repo, err := h.repo(r.Context())
	if err != nil {
		h.logger.Warn("lead collection unavailable", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return repo, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateLead):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidSegment),
		errors.Is(err, ErrMissingCompany), errors.Is(err, ErrInvalidValue):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("lead operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
