// Package dashboard summarizes the lead pipeline and the product catalog for
// the landing view.
package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/lamitex/lamitex-crm/internal/catalog"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/pipeline"
)

// SegmentShare is one slice of the segment distribution.
type SegmentShare struct {
	Segment leads.Segment `json:"segment"`
	Count   int           `json:"count"`
	Percent float64       `json:"percent"`
}

// StageTotal aggregates one pipeline stage.
type StageTotal struct {
	Status leads.Status `json:"status"`
	Label  string       `json:"label"`
	Count  int          `json:"count"`
	Total  float64      `json:"total"`
}

// Stats is the dashboard payload.
type Stats struct {
	Category      catalog.Category  `json:"category"`
	LeadCount     int               `json:"leadCount"`
	TotalValue    float64           `json:"totalValue"`
	AverageTicket float64           `json:"averageTicket"`
	Conversion    float64           `json:"conversion"`
	Segments      []SegmentShare    `json:"segments"`
	Stages        []StageTotal      `json:"stages"`
	Products      []catalog.Product `json:"products"`
}

// Dashboard computes statistics from a live lead collection.
type Dashboard struct {
	repo leads.Repository
}

// New creates a dashboard over repo.
func New(repo leads.Repository) *Dashboard {
	return &Dashboard{repo: repo}
}

// Stats aggregates the current leads. Conversion is the percentage of leads
// already in shipping; the product list is filtered by category.
func (d *Dashboard) Stats(ctx context.Context, category catalog.Category) (Stats, error) {
	all, err := d.repo.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: list leads: %w", err)
	}
	if category == "" {
		category = catalog.CategoryAll
	}

	stats := Stats{
		Category:  category,
		LeadCount: len(all),
		Products:  catalog.ByCategory(category),
	}
	if stats.Products == nil {
		stats.Products = []catalog.Product{}
	}

	bySegment := make(map[leads.Segment]int)
	byStatus := make(map[leads.Status]*StageTotal)
	for _, col := range pipeline.Columns() {
		byStatus[col.Status] = &StageTotal{Status: col.Status, Label: col.Label}
	}
	for _, l := range all {
		v := l.ValueOrZero()
		stats.TotalValue += v
		bySegment[l.Segment]++
		if st, ok := byStatus[l.Status]; ok {
			st.Count++
			st.Total += v
		}
	}

	for _, seg := range leads.Segments() {
		share := SegmentShare{Segment: seg, Count: bySegment[seg]}
		if stats.LeadCount > 0 {
			share.Percent = round1(float64(share.Count) * 100 / float64(stats.LeadCount))
		}
		stats.Segments = append(stats.Segments, share)
	}
	for _, col := range pipeline.Columns() {
		stats.Stages = append(stats.Stages, *byStatus[col.Status])
	}
	if stats.LeadCount > 0 {
		stats.AverageTicket = stats.TotalValue / float64(stats.LeadCount)
		stats.Conversion = round1(float64(byStatus[leads.StatusShipping].Count) * 100 / float64(stats.LeadCount))
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
