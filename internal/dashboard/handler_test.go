package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamitex/lamitex-crm/internal/leads"
)

func newTestRouter(resolve leads.RepositoryFunc) http.Handler {
	h := NewHandler(resolve, nil)
	r := chi.NewRouter()
	r.Get("/api/dashboard", h.Get)
	r.Get("/api/dashboard/charts/{kind}", h.Chart)
	r.Get("/api/catalog", h.Catalog)
	return r
}

func seeded() leads.RepositoryFunc {
	repo := leads.NewInMemoryRepository(leads.SeedLeads()...)
	return func(context.Context) (leads.Repository, error) { return repo, nil }
}

func TestHandler_Get(t *testing.T) {
	router := newTestRouter(seeded())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard?category=Automotiva", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.LeadCount)
	assert.Len(t, stats.Products, 4)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard?category=Eletrônicos", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetWithoutWorkspace(t *testing.T) {
	router := newTestRouter(func(context.Context) (leads.Repository, error) {
		return nil, errors.New("missing workspace")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Chart(t *testing.T) {
	router := newTestRouter(seeded())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/charts/segments.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/charts/heatmap.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Catalog(t *testing.T) {
	router := newTestRouter(seeded())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Category string            `json:"category"`
		Products []json.RawMessage `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Tudo", body.Category)
	assert.Len(t, body.Products, 8)
}
