package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lamitex/lamitex-crm/internal/catalog"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// Handler serves the dashboard view.
type Handler struct {
	repo   leads.RepositoryFunc
	logger *logging.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(repo leads.RepositoryFunc, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/dashboard?category=
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	repo, err := h.repo(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := New(repo).Stats(r.Context(), category)
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Chart handles GET /api/dashboard/charts/{kind}.png
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseChartKind(strings.TrimSuffix(chi.URLParam(r, "kind"), ".png"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	repo, err := h.repo(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := New(repo).RenderChart(r.Context(), kind, &buf); err != nil {
		if errors.Is(err, ErrUnknownChart) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to render dashboard chart", "error", err, "kind", kind)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Catalog handles GET /api/catalog?category=
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	products := catalog.ByCategory(category)
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":   category,
		"categories": catalog.Categories(),
		"products":   products,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
