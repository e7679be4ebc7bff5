package navigation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lamitex/lamitex-crm/internal/chat"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/internal/pipeline"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// Dependencies are shared by every shell. A nil Searcher or NewSender puts
// the corresponding view in degraded mode.
type Dependencies struct {
	Searcher        prospecting.Searcher
	NewSender       func() chat.Sender
	DefaultLocation string
	ActionLock      time.Duration
	Now             func() time.Time
	Metrics         *metrics.CRMMetrics
	Logger          *logging.Logger
}

// Shell holds the active view and the lead collection of one workspace.
// Only the active view has state; leaving a view discards it.
type Shell struct {
	id    string
	deps  Dependencies
	leads leads.Repository

	mu          sync.Mutex
	active      View
	board       *pipeline.Board
	prospecting *prospecting.Session
	chat        *chat.Panel
}

// NewShell creates a shell showing the dashboard.
func NewShell(id string, repo leads.Repository, deps Dependencies) *Shell {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	deps.Logger = deps.Logger.With("workspace_id", id)
	return &Shell{id: id, deps: deps, leads: repo, active: ViewDashboard}
}

func (s *Shell) ID() string { return s.id }

// Active returns the mounted view.
func (s *Shell) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Leads returns the shared lead collection.
func (s *Shell) Leads() leads.Repository {
	return s.leads
}

// AddLead appends a lead to the collection.
func (s *Shell) AddLead(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	return s.leads.Add(ctx, lead)
}

// Navigate switches views. Re-selecting the active view keeps its state.
func (s *Shell) Navigate(view View) (bool, error) {
	if _, err := ParseView(string(view)); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if view == s.active {
		return false, nil
	}
	s.unmountLocked()
	s.active = view
	s.mountLocked()
	s.deps.Logger.Debug("view changed", "view", view)
	return true, nil
}

func (s *Shell) mountLocked() {
	logger := s.deps.Logger
	switch s.active {
	case ViewKanban:
		s.board = pipeline.NewBoard(s.leads, s.deps.Metrics, logger.Component("pipeline"))
	case ViewProspecting:
		s.prospecting = prospecting.NewSession(prospecting.SessionConfig{
			Searcher:        s.deps.Searcher,
			AddLead:         s.AddLead,
			DefaultLocation: s.deps.DefaultLocation,
			Metrics:         s.deps.Metrics,
			Logger:          logger.Component("prospecting"),
		})
	case ViewChat:
		var sender chat.Sender
		if s.deps.NewSender != nil {
			sender = s.deps.NewSender()
		}
		s.chat = chat.NewPanel(chat.PanelConfig{
			Sender:     sender,
			ActionLock: s.deps.ActionLock,
			Now:        s.deps.Now,
			Logger:     logger.Component("chat"),
			Metrics:    s.deps.Metrics,
		})
	}
}

func (s *Shell) unmountLocked() {
	if s.board != nil {
		s.board.Cancel()
		s.board = nil
	}
	s.prospecting = nil
	if s.chat != nil {
		s.chat.Close()
		s.chat = nil
	}
}

// Board returns the mounted kanban board.
func (s *Shell) Board() (*pipeline.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return nil, fmt.Errorf("%w: %s", ErrViewNotMounted, ViewKanban)
	}
	return s.board, nil
}

// Prospecting returns the mounted prospecting session.
func (s *Shell) Prospecting() (*prospecting.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prospecting == nil {
		return nil, fmt.Errorf("%w: %s", ErrViewNotMounted, ViewProspecting)
	}
	return s.prospecting, nil
}

// Chat returns the mounted chat panel.
func (s *Shell) Chat() (*chat.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return nil, fmt.Errorf("%w: %s", ErrViewNotMounted, ViewChat)
	}
	return s.chat, nil
}

// Close unmounts the active view.
func (s *Shell) Close() {
	s.mu.Lock()
	s.unmountLocked()
	s.mu.Unlock()
}
