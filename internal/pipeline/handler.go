package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// BoardFunc resolves the mounted board for the request's workspace.
type BoardFunc func(ctx context.Context) (*Board, error)

// Handler serves the kanban board endpoints.
type Handler struct {
	board  BoardFunc
	logger *logging.Logger
}

func NewHandler(board BoardFunc, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{board: board, logger: logger}
}

// BoardResponse is the body of GET /api/board.
type BoardResponse struct {
	Columns  []ColumnView `json:"columns"`
	Dragging string       `json:"dragging,omitempty"`
}

type dragRequest struct {
	LeadID string `json:"leadId"`
}

type columnRequest struct {
	Status string `json:"status"`
}

// Get handles GET /api/board
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	board, ok := h.resolve(w, r)
	if !ok {
		return
	}
	cols, err := board.Columns(r.Context())
	if err != nil {
		h.logger.Error("failed to build board", "error", err)
		http.Error(w, "failed to build board", http.StatusInternalServerError)
		return
	}
	dragging, _ := board.Dragging()
	writeJSON(w, http.StatusOK, BoardResponse{Columns: cols, Dragging: dragging})
}

// DragStart handles POST /api/board/drag
func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LeadID == "" {
		http.Error(w, "leadId is required", http.StatusBadRequest)
		return
	}
	board, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := board.DragStart(r.Context(), req.LeadID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DragOver handles POST /api/board/dragover
func (h *Handler) DragOver(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	board, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]DropEffect{"dropEffect": board.DragOver(leads.Status(req.Status))})
}

// Drop handles POST /api/board/drop
func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	status, err := leads.ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	board, ok := h.resolve(w, r)
	if !ok {
		return
	}
	result, err := board.Drop(r.Context(), status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*Board, bool) {
	board, err := h.board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return nil, false
	}
	return board, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leads.ErrLeadNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, leads.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("board operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
