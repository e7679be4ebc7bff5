package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/lamitex/lamitex-crm/internal/catalog"
	"github.com/lamitex/lamitex-crm/internal/chat"
	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	"github.com/lamitex/lamitex-crm/internal/conversation"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// BuildBedrockFallback returns the Bedrock client used when Gemini fails, or
// nil when no Bedrock model is configured.
func BuildBedrockFallback(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) conversation.LLMClient {
	if cfg == nil || strings.TrimSpace(cfg.BedrockModelID) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("bedrock fallback enabled", "model", cfg.BedrockModelID, "region", awsCfg.Region)
	return conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
}

// BuildChatClient wires the chat agent's LLM client. Without an API key it
// returns nil and the chat panel runs degraded. The returned func releases
// the Gemini connection.
func BuildChatClient(ctx context.Context, cfg *appconfig.Config, fallback conversation.LLMClient, logger *logging.Logger) (conversation.LLMClient, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.HasAPIKey() {
		logger.Warn("no API key configured; chat agent and prospecting run degraded")
		return nil, noop, nil
	}

	gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.APIKey, cfg.ChatModel)
	if err != nil {
		return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
	}
	closer := func() { _ = gemini.Close() }
	if fallback == nil {
		logger.Info("using gemini chat client", "model", cfg.ChatModel)
		return gemini, closer, nil
	}
	logger.Info("using gemini chat client with bedrock fallback", "model", cfg.ChatModel)
	return conversation.NewFallbackLLMClient(gemini, fallback, logger), closer, nil
}

// NewSenderFactory returns the constructor for chat agent sessions. Every
// mounted chat panel gets a fresh session primed with the sales persona. A nil
// client yields a nil factory.
func NewSenderFactory(client conversation.LLMClient, cfg *appconfig.Config, logger *logging.Logger, m *metrics.CRMMetrics) func() chat.Sender {
	if client == nil || cfg == nil {
		return nil
	}
	sessionCfg := conversation.SessionConfig{
		Model:             cfg.ChatModel,
		SystemInstruction: catalog.SystemInstruction(),
		Temperature:       cfg.ChatTemperature,
		MaxOutputTokens:   cfg.ChatMaxTokens,
	}
	return func() chat.Sender {
		return conversation.NewSession(client, sessionCfg, logger, m)
	}
}
