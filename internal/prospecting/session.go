package prospecting

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// LeadAdder appends a lead to the workspace's collection.
type LeadAdder func(ctx context.Context, lead leads.Lead) (leads.Lead, error)

// ProspectView is a prospect as rendered, with its promotion marker.
type ProspectView struct {
	Prospect
	Key      string `json:"key"`
	Promoted bool   `json:"promoted"`
}

// View is the renderable state of a prospecting session.
type View struct {
	Niche          string          `json:"niche"`
	Location       string          `json:"location"`
	Searching      bool            `json:"searching"`
	Summary        string          `json:"summary,omitempty"`
	ShowSummary    bool            `json:"showSummary"`
	Prospects      []ProspectView  `json:"prospects"`
	GroundingLinks []GroundingLink `json:"groundingLinks"`
}

// PromoteResult reports whether a promotion appended a lead.
type PromoteResult struct {
	Promoted bool        `json:"promoted"`
	Lead     *leads.Lead `json:"lead,omitempty"`
}

// Session is the prospecting view state: the last search and which of its
// results were already promoted. Overlapping searches are not serialized;
// whichever completes last populates the results.
type Session struct {
	searcher Searcher
	addLead  LeadAdder
	metrics  *metrics.CRMMetrics
	logger   *logging.Logger
	location string

	mu        sync.Mutex
	niche     string
	searchLoc string
	inFlight  int
	summary   string
	prospects []Prospect
	links     []GroundingLink
	promoted  map[string]bool
}

// SessionConfig wires a session. A nil Searcher puts it in degraded mode.
type SessionConfig struct {
	Searcher        Searcher
	AddLead         LeadAdder
	DefaultLocation string
	Metrics         *metrics.CRMMetrics
	Logger          *logging.Logger
}

// NewSession mounts an empty prospecting session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if strings.TrimSpace(cfg.DefaultLocation) == "" {
		cfg.DefaultLocation = DefaultLocation
	}
	return &Session{
		searcher:  cfg.Searcher,
		addLead:   cfg.AddLead,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		location:  cfg.DefaultLocation,
		prospects: []Prospect{},
		links:     []GroundingLink{},
		promoted:  make(map[string]bool),
	}
}

// Search clears every previous result and runs a new search. Failures are
// absorbed into the summary text.
func (s *Session) Search(ctx context.Context, niche, location string) (SearchResult, error) {
	if strings.TrimSpace(niche) == "" {
		return SearchResult{}, ErrNicheRequired
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.location
	}

	s.mu.Lock()
	s.niche = niche
	s.searchLoc = location
	s.summary = ""
	s.prospects = []Prospect{}
	s.links = []GroundingLink{}
	s.promoted = make(map[string]bool)
	s.inFlight++
	s.mu.Unlock()

	result := s.run(ctx, niche, location)

	s.mu.Lock()
	s.inFlight--
	s.summary = result.Text
	s.prospects = result.Prospects
	s.links = result.GroundingLinks
	s.mu.Unlock()

	return result, nil
}

func (s *Session) run(ctx context.Context, niche, location string) SearchResult {
	empty := SearchResult{Text: SearchFailedText, Prospects: []Prospect{}, GroundingLinks: []GroundingLink{}}
	if s.searcher == nil {
		s.metrics.ObserveSearch("degraded")
		return empty
	}

	result, err := s.searcher.Search(ctx, niche, location)
	if err != nil {
		s.logger.Error("prospect search failed", "error", err, "niche", niche, "location", location)
		s.metrics.ObserveSearch("failure")
		return empty
	}
	if result.Prospects == nil {
		result.Prospects = []Prospect{}
	}
	if result.GroundingLinks == nil {
		result.GroundingLinks = []GroundingLink{}
	}
	s.metrics.ObserveSearch("success")
	s.logger.Info("prospect search completed", "niche", niche, "location", location, "results", len(result.Prospects))
	return result
}

// Promote admits the prospect with key into the lead pipeline. Promoting the
// same prospect again in this session does nothing.
func (s *Session) Promote(ctx context.Context, key string) (PromoteResult, error) {
	s.mu.Lock()
	if s.promoted[key] {
		s.mu.Unlock()
		return PromoteResult{}, nil
	}
	var (
		found Prospect
		ok    bool
	)
	for _, p := range s.prospects {
		if p.Key() == key {
			found, ok = p, true
			break
		}
	}
	niche := s.niche
	if !ok {
		s.mu.Unlock()
		return PromoteResult{}, fmt.Errorf("%w: %s", ErrProspectNotFound, key)
	}
	// Mark before appending so a concurrent promote of the same key is a no-op.
	s.promoted[key] = true
	s.mu.Unlock()

	lead, err := s.addLead(ctx, leads.Lead{
		ID:          uuid.NewString(),
		CompanyName: found.CompanyName,
		ContactName: UnknownContact,
		Niche:       niche,
		Segment:     SegmentForNiche(niche),
		Location:    CardLocation(found.Address),
		Status:      leads.StatusProspecting,
		Value:       leads.Float(0),
	})
	if err != nil {
		s.mu.Lock()
		delete(s.promoted, key)
		s.mu.Unlock()
		return PromoteResult{}, fmt.Errorf("prospecting: promote: %w", err)
	}

	s.metrics.ObservePromotion()
	s.logger.Info("prospect promoted", "lead_id", lead.ID, "company", lead.CompanyName)
	return PromoteResult{Promoted: true, Lead: &lead}, nil
}

// View returns a copy of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Niche:          s.niche,
		Location:       s.searchLoc,
		Searching:      s.inFlight > 0,
		Summary:        s.summary,
		ShowSummary:    s.summary != "" && (len(s.prospects) == 0 || !HasJSONBlock(s.summary)),
		Prospects:      make([]ProspectView, 0, len(s.prospects)),
		GroundingLinks: append([]GroundingLink{}, s.links...),
	}
	for _, p := range s.prospects {
		v.Prospects = append(v.Prospects, ProspectView{Prospect: p, Key: p.Key(), Promoted: s.promoted[p.Key()]})
	}
	return v
}
