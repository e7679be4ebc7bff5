package prospecting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_SearchAndPromote(t *testing.T) {
	session, _ := newTestSession(&stubSearcher{result: twoProspects()})
	h := NewHandler(func(context.Context) (*Session, error) { return session, nil }, nil)

	w := httptest.NewRecorder()
	h.Search(w, httptest.NewRequest(http.MethodPost, "/api/prospecting/search", strings.NewReader(`{"niche":"Tapeçaria"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var view View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Prospects, 2)
	assert.Equal(t, "São Paulo", view.Location)

	body := `{"key":` + mustJSON(t, view.Prospects[1].Key) + `}`
	w = httptest.NewRecorder()
	h.Promote(w, httptest.NewRequest(http.MethodPost, "/api/prospecting/promote", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.Promote(w, httptest.NewRequest(http.MethodPost, "/api/prospecting/promote", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"promoted":false`)
}

func TestHandler_Validation(t *testing.T) {
	session, _ := newTestSession(&stubSearcher{})
	h := NewHandler(func(context.Context) (*Session, error) { return session, nil }, nil)

	w := httptest.NewRecorder()
	h.Search(w, httptest.NewRequest(http.MethodPost, "/api/prospecting/search", strings.NewReader(`{"niche":""}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Promote(w, httptest.NewRequest(http.MethodPost, "/api/prospecting/promote", strings.NewReader(`{"key":"x"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.Niches(w, httptest.NewRequest(http.MethodGet, "/api/prospecting/niches", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fábrica de Brindes")
}

func TestHandler_SearchSurvivesClientDisconnect(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Achei.\n` + "```json\\n" + `[{\"companyName\":\"Estofados Lima\",\"address\":\"Rua A, 10, Mooca\",\"recommendedProduct\":\"Curvim\"}]` + "\\n```" + `"}]}}]}`))
	})
	session, _ := newTestSession(searcher)
	h := NewHandler(func(context.Context) (*Session, error) { return session, nil }, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/prospecting/search", strings.NewReader(`{"niche":"Tapeçaria"}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Search(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	view := session.View()
	require.Len(t, view.Prospects, 1)
	assert.Equal(t, "Estofados Lima", view.Prospects[0].CompanyName)
	assert.NotEqual(t, SearchFailedText, view.Summary)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
