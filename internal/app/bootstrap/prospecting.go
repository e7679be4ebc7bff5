package bootstrap

import (
	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// BuildSearcher returns the Maps-grounded searcher, or nil without an API key.
func BuildSearcher(cfg *appconfig.Config, logger *logging.Logger) prospecting.Searcher {
	if cfg == nil || !cfg.HasAPIKey() {
		return nil
	}
	return prospecting.NewGeminiSearcher(prospecting.GeminiSearcherConfig{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.SearchModel,
		Anchor:  prospecting.LatLng{Latitude: cfg.AnchorLatitude, Longitude: cfg.AnchorLongitude},
	}, logger)
}
