package prospecting

import (
	"errors"
	"strings"

	"github.com/lamitex/lamitex-crm/internal/leads"
)

const (
	// SearchFailedText replaces the summary when the search cannot be performed.
	SearchFailedText = "Não foi possível realizar a busca no Google Maps no momento."
	// DefaultLinkTitle labels a map reference that came back without a title.
	DefaultLinkTitle = "Ver no Maps"
	// UnknownContact is the placeholder contact for promoted prospects.
	UnknownContact = "A descobrir"
	// DefaultLocation is searched when no location is given.
	DefaultLocation = "São Paulo"
)

var (
	ErrNicheRequired    = errors.New("prospecting: niche is required")
	ErrProspectNotFound = errors.New("prospecting: prospect not in current results")
	ErrSearcherFailed   = errors.New("prospecting: search failed")
)

// Prospect is an unconfirmed business found by a search.
type Prospect struct {
	CompanyName        string `json:"companyName"`
	Address            string `json:"address"`
	RecommendedProduct string `json:"recommendedProduct"`
}

// Key identifies a prospect within one search session.
func (p Prospect) Key() string {
	return p.CompanyName + "-" + p.Address
}

// GroundingLink is a map reference returned with a search.
type GroundingLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// SearchResult is the outcome of one grounded search.
type SearchResult struct {
	Text           string          `json:"text"`
	Prospects      []Prospect      `json:"prospects"`
	GroundingLinks []GroundingLink `json:"groundingLinks"`
}

// SuggestedNiche is a quick-select entry offered next to the niche input.
type SuggestedNiche struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Focus string `json:"focus"`
	Icon  string `json:"icon"`
}

// SuggestedNiches returns the quick-select niches.
func SuggestedNiches() []SuggestedNiche {
	return []SuggestedNiche{
		{ID: "auto", Label: "Tapeçaria Automotiva", Focus: "Curvim, Diamante", Icon: "🚗"},
		{ID: "brindes", Label: "Fábrica de Brindes", Focus: "Neotex, Bagum", Icon: "🎒"},
		{ID: "jeans", Label: "Confecção / Jeans", Focus: "PU Queima, Alpes", Icon: "👖"},
	}
}

// SegmentForNiche maps niche keywords onto a customer segment.
func SegmentForNiche(niche string) leads.Segment {
	n := strings.ToLower(niche)
	switch {
	case strings.Contains(n, "tapeçaria"), strings.Contains(n, "automotiva"):
		return leads.SegmentProfessionalUpholstery
	case strings.Contains(n, "varejo"), strings.Contains(n, "loja"):
		return leads.SegmentRetail
	case strings.Contains(n, "atacado"), strings.Contains(n, "distribuidora"):
		return leads.SegmentWholesale
	default:
		return leads.SegmentIndustry
	}
}

// CardLocation shortens an address to its first comma-separated part.
func CardLocation(address string) string {
	if first, _, ok := strings.Cut(address, ","); ok && first != "" {
		return first
	}
	return address
}
