package bootstrap

import (
	"time"

	"github.com/lamitex/lamitex-crm/internal/chat"
	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	"github.com/lamitex/lamitex-crm/internal/navigation"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// BuildRegistry wires the per-workspace shells.
func BuildRegistry(cfg *appconfig.Config, searcher prospecting.Searcher, newSender func() chat.Sender, m *metrics.CRMMetrics, logger *logging.Logger) *navigation.Registry {
	deps := navigation.Dependencies{
		Searcher:  searcher,
		NewSender: newSender,
		Now:       time.Now,
		Metrics:   m,
		Logger:    logger,
	}
	seed := true
	if cfg != nil {
		deps.DefaultLocation = cfg.DefaultLocation
		deps.ActionLock = cfg.ChatActionLock
		seed = cfg.SeedLeads
	}
	return navigation.NewRegistry(deps, seed)
}
