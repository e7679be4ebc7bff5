package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// DropEffect is the cursor feedback reported while a card hovers a column.
type DropEffect string

const (
	DropEffectMove DropEffect = "move"
	DropEffectNone DropEffect = "none"
)

// Column is one fixed stage of the board.
type Column struct {
	Status leads.Status `json:"status"`
	Label  string       `json:"label"`
}

var columns = []Column{
	{Status: leads.StatusProspecting, Label: "Prospecção / Maps"},
	{Status: leads.StatusTriage, Label: "Triagem Técnica"},
	{Status: leads.StatusSampleSent, Label: "Amostra Enviada"},
	{Status: leads.StatusQuote, Label: "Orçamento"},
	{Status: leads.StatusProduction, Label: "Produção / Corte"},
	{Status: leads.StatusShipping, Label: "Expedição"},
}

// Columns returns the six board columns in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// ColumnView is a rendered column: its leads plus count and summed value.
type ColumnView struct {
	Column
	Leads []leads.Lead `json:"leads"`
	Count int          `json:"count"`
	Total float64      `json:"total"`
}

// DropResult describes the outcome of a drop.
type DropResult struct {
	Moved bool        `json:"moved"`
	Lead  *leads.Lead `json:"lead,omitempty"`
}

// Board is the kanban view over a workspace's leads. It holds at most one
// in-progress drag.
type Board struct {
	repo    leads.Repository
	metrics *metrics.CRMMetrics
	logger  *logging.Logger

	mu       sync.Mutex
	dragging string
}

// NewBoard creates a board backed by repo.
func NewBoard(repo leads.Repository, m *metrics.CRMMetrics, logger *logging.Logger) *Board {
	if logger == nil {
		logger = logging.Default()
	}
	return &Board{repo: repo, metrics: m, logger: logger}
}

// Columns partitions the current leads by status. Leads keep collection order
// within each column.
func (b *Board) Columns(ctx context.Context) ([]ColumnView, error) {
	all, err := b.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list leads: %w", err)
	}

	views := make([]ColumnView, len(columns))
	index := make(map[leads.Status]int, len(columns))
	for i, col := range columns {
		views[i] = ColumnView{Column: col, Leads: []leads.Lead{}}
		index[col.Status] = i
	}
	for _, lead := range all {
		i, ok := index[lead.Status]
		if !ok {
			continue
		}
		views[i].Leads = append(views[i].Leads, lead)
		views[i].Count++
		views[i].Total += lead.ValueOrZero()
	}
	return views, nil
}

// DragStart records which lead is being dragged.
func (b *Board) DragStart(ctx context.Context, leadID string) error {
	if _, err := b.repo.GetByID(ctx, leadID); err != nil {
		return err
	}
	b.mu.Lock()
	b.dragging = leadID
	b.mu.Unlock()
	return nil
}

// Dragging returns the id of the lead being dragged, if any.
func (b *Board) Dragging() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging, b.dragging != ""
}

// DragOver accepts a hover over any valid column so that the drop is allowed.
func (b *Board) DragOver(status leads.Status) DropEffect {
	if !status.Valid() {
		return DropEffectNone
	}
	return DropEffectMove
}

// Drop moves the dragged lead to status and clears the drag marker. Without a
// drag in progress it does nothing. Dropping onto the lead's own column
// rewrites the same status.
func (b *Board) Drop(ctx context.Context, status leads.Status) (DropResult, error) {
	if !status.Valid() {
		return DropResult{}, fmt.Errorf("%w: %q", leads.ErrInvalidStatus, status)
	}

	b.mu.Lock()
	id := b.dragging
	b.dragging = ""
	b.mu.Unlock()

	if id == "" {
		return DropResult{}, nil
	}

	lead, err := b.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			b.logger.Warn("dragged lead disappeared", "lead_id", id)
		}
		return DropResult{}, err
	}
	b.metrics.ObservePipelineMove(string(status))
	b.logger.Info("lead moved", "lead_id", id, "status", status)
	return DropResult{Moved: true, Lead: &lead}, nil
}

// Cancel clears the drag marker without moving anything.
func (b *Board) Cancel() {
	b.mu.Lock()
	b.dragging = ""
	b.mu.Unlock()
}
