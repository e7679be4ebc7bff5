package leads

import (
	"fmt"
	"strings"
	"time"
)

// Status is a pipeline stage. Stages are ordered for display but a lead may
// move between any two of them.
type Status string

const (
	StatusProspecting Status = "prospecting"
	StatusTriage      Status = "triage"
	StatusSampleSent  Status = "sample_sent"
	StatusQuote       Status = "quote"
	StatusProduction  Status = "production"
	StatusShipping    Status = "shipping"
)

// Statuses returns the pipeline stages in board order.
func Statuses() []Status {
	return []Status{StatusProspecting, StatusTriage, StatusSampleSent, StatusQuote, StatusProduction, StatusShipping}
}

// Valid reports whether s is one of the six pipeline stages.
func (s Status) Valid() bool {
	switch s {
	case StatusProspecting, StatusTriage, StatusSampleSent, StatusQuote, StatusProduction, StatusShipping:
		return true
	}
	return false
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Segment is the customer segment; values are the labels shown to the sales team.
type Segment string

const (
	SegmentProfessionalUpholstery Segment = "Tapeçaria Profissional"
	SegmentWholesale              Segment = "Atacado"
	SegmentRetail                 Segment = "Varejo"
	SegmentIndustry               Segment = "Indústria"
)

// Segments returns every segment.
func Segments() []Segment {
	return []Segment{SegmentProfessionalUpholstery, SegmentWholesale, SegmentRetail, SegmentIndustry}
}

// Valid reports whether s is a known segment.
func (s Segment) Valid() bool {
	switch s {
	case SegmentProfessionalUpholstery, SegmentWholesale, SegmentRetail, SegmentIndustry:
		return true
	}
	return false
}

// Lead is a prospective or active customer tracked through the pipeline.
type Lead struct {
	ID          string     `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Niche       string     `json:"niche"`
	Segment     Segment    `json:"segment"`
	Location    string     `json:"location"`
	Status      Status     `json:"status"`
	Value       *float64   `json:"value,omitempty"`
	LastContact *time.Time `json:"lastContact,omitempty"`
}

// ValueOrZero treats an absent value as zero.
func (l Lead) ValueOrZero() float64 {
	if l.Value == nil {
		return 0
	}
	return *l.Value
}

// Validate enforces the lead invariants.
func (l Lead) Validate() error {
	if strings.TrimSpace(l.CompanyName) == "" {
		return ErrMissingCompany
	}
	if !l.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, l.Status)
	}
	if !l.Segment.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSegment, l.Segment)
	}
	if l.Value != nil && *l.Value < 0 {
		return ErrInvalidValue
	}
	return nil
}

func (l Lead) clone() Lead {
	out := l
	if l.Value != nil {
		v := *l.Value
		out.Value = &v
	}
	if l.LastContact != nil {
		t := *l.LastContact
		out.LastContact = &t
	}
	return out
}

// Float returns a pointer to v, for optional values.
func Float(v float64) *float64 {
	return &v
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	CompanyName string   `json:"companyName"`
	ContactName string   `json:"contactName"`
	Niche       string   `json:"niche"`
	Segment     Segment  `json:"segment"`
	Location    string   `json:"location"`
	Status      Status   `json:"status"`
	Value       *float64 `json:"value"`
}

// Lead converts the request into a lead, defaulting the status to prospecting.
func (r CreateLeadRequest) Lead() Lead {
	status := r.Status
	if status == "" {
		status = StatusProspecting
	}
	return Lead{
		CompanyName: strings.TrimSpace(r.CompanyName),
		ContactName: strings.TrimSpace(r.ContactName),
		Niche:       strings.TrimSpace(r.Niche),
		Segment:     r.Segment,
		Location:    strings.TrimSpace(r.Location),
		Status:      status,
		Value:       r.Value,
	}
}

// SeedLeads returns the leads present when a workspace starts.
func SeedLeads() []Lead {
	return []Lead{
		{ID: "1", CompanyName: "Estofados Silva", ContactName: "Sr. João", Niche: "Tapeçaria Automotiva",
			Segment: SegmentProfessionalUpholstery, Location: "Osasco, SP", Status: StatusProspecting, Value: Float(0)},
		{ID: "2", CompanyName: "Bolsas Premium", ContactName: "Ana Clara", Niche: "Fábrica de Bolsas",
			Segment: SegmentIndustry, Location: "Centro, SP", Status: StatusTriage, Value: Float(5000)},
		{ID: "3", CompanyName: "Jeans & Cia", ContactName: "Carlos", Niche: "Confecção",
			Segment: SegmentWholesale, Location: "Bom Retiro, SP", Status: StatusSampleSent, Value: Float(2000)},
	}
}
