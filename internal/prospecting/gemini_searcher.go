package prospecting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lamitex/lamitex-crm/pkg/logging"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
)

var searchTracer = otel.Tracer("lamitex.internal.prospecting")

// Searcher finds businesses for a niche near a location.
type Searcher interface {
	Search(ctx context.Context, niche, location string) (SearchResult, error)
}

// LatLng anchors map grounding.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SaoPaulo is the default grounding anchor.
var SaoPaulo = LatLng{Latitude: -23.5505, Longitude: -46.6333}

// GeminiSearcher runs Maps-grounded generateContent calls over REST.
type GeminiSearcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	anchor     LatLng
	logger     *logging.Logger
}

// GeminiSearcherConfig configures a GeminiSearcher.
type GeminiSearcherConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Anchor  LatLng
	// Timeout bounds each call when set. Zero leaves searches unbounded.
	Timeout time.Duration
}

// NewGeminiSearcher constructs a grounded search client.
func NewGeminiSearcher(cfg GeminiSearcherConfig, logger *logging.Logger) *GeminiSearcher {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.Anchor == (LatLng{}) {
		cfg.Anchor = SaoPaulo
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GeminiSearcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		anchor:     cfg.Anchor,
		logger:     logger,
	}
}

type generateRequest struct {
	Contents   []content   `json:"contents"`
	Tools      []tool      `json:"tools"`
	ToolConfig *toolConfig `json:"toolConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type toolConfig struct {
	RetrievalConfig struct {
		LatLng LatLng `json:"latLng"`
	} `json:"retrievalConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Maps *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"maps,omitempty"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

// Search asks the model for five businesses and returns its text, the
// parsed prospects, and the map references it grounded on.
func (s *GeminiSearcher) Search(ctx context.Context, niche, location string) (SearchResult, error) {
	ctx, span := searchTracer.Start(ctx, "gemini.grounded_search")
	defer span.End()
	span.SetAttributes(
		attribute.String("lamitex.prospecting.niche", niche),
		attribute.String("lamitex.prospecting.location", location),
		attribute.String("lamitex.llm.model", s.model),
	)

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: searchPrompt(niche, location)}}}},
		Tools:    []tool{{GoogleMaps: &struct{}{}}},
	}
	req.ToolConfig = &toolConfig{}
	req.ToolConfig.RetrievalConfig.LatLng = s.anchor

	var resp generateResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(s.model))
	if err := s.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		span.RecordError(err)
		return SearchResult{}, fmt.Errorf("%w: %v", ErrSearcherFailed, err)
	}

	result := SearchResult{Prospects: []Prospect{}, GroundingLinks: []GroundingLink{}}
	if len(resp.Candidates) == 0 {
		return result, nil
	}
	candidate := resp.Candidates[0]

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	result.Text = text.String()

	prospects, err := ParseProspects(result.Text)
	if err != nil {
		s.logger.Warn("failed to parse prospect JSON", "error", err)
	}
	result.Prospects = prospects

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Maps == nil {
				continue
			}
			title := chunk.Maps.Title
			if title == "" {
				title = DefaultLinkTitle
			}
			result.GroundingLinks = append(result.GroundingLinks, GroundingLink{Title: title, URI: chunk.Maps.URI})
		}
	}
	span.SetAttributes(attribute.Int("lamitex.prospecting.results", len(result.Prospects)))
	return result, nil
}

func searchPrompt(niche, location string) string {
	return fmt.Sprintf(`Find 5 businesses in the niche "%s" in or near "%s".

CRITICAL OUTPUT FORMAT:
1. First, provide a very brief summary text in Portuguese.
2. Then, provide a Markdown Code Block containing a JSON array of the results.

The JSON array must follow this structure exactly:
[
  {
    "companyName": "Name of Company",
    "address": "Full Address",
    "recommendedProduct": "One specific Lamitex product suitable for them"
  }
]

Use the Google Maps tool to find real data.`, niche, location)
}

func (s *GeminiSearcher) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	endpoint := s.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		s.logger.Warn("gemini API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, msg)
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
