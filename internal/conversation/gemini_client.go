package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
)

var llmTracer = otel.Tracer("lamitex.internal.conversation.llm")

// geminiChat is the slice of *genai.ChatSession the client drives.
type geminiChat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiLLMClient implements LLMClient using Google's Gemini API.
type GeminiLLMClient struct {
	client  *genai.Client
	modelID string
	newChat func(modelID string, req LLMRequest, history []*genai.Content) geminiChat
}

// NewGeminiLLMClient creates a new Gemini LLM client.
func NewGeminiLLMClient(ctx context.Context, apiKey, modelID string) (*GeminiLLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}

	c := &GeminiLLMClient{
		client:  client,
		modelID: modelID,
	}
	c.newChat = c.startChat
	return c, nil
}

func (c *GeminiLLMClient) startChat(modelID string, req LLMRequest, history []*genai.Content) geminiChat {
	model := c.client.GenerativeModel(modelID)
	configureModel(model, req)
	cs := model.StartChat()
	cs.History = history
	return cs
}

func configureModel(model *genai.GenerativeModel, req LLMRequest) {
	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if systemText := strings.TrimSpace(strings.Join(req.System, "\n\n")); systemText != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemText))
	}
}

// Complete sends the history plus the final message to Gemini. Attachments
// travel as inline blobs next to the text of their message.
func (c *GeminiLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if len(req.Messages) == 0 {
		return LLMResponse{}, ErrNoMessages
	}

	modelID := c.modelID
	if strings.TrimSpace(req.Model) != "" {
		modelID = req.Model
	}

	ctx, span := llmTracer.Start(ctx, "gemini.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("lamitex.llm.model", modelID),
		attribute.Int("lamitex.llm.messages", len(req.Messages)),
	)

	history, last := geminiHistory(req.Messages)
	if len(last) == 0 {
		return LLMResponse{}, ErrEmptyTurn
	}
	resp, err := c.newChat(modelID, req, history).SendMessage(ctx, last...)
	if err != nil {
		span.RecordError(err)
		return LLMResponse{}, fmt.Errorf("conversation: gemini completion failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return LLMResponse{}, errors.New("conversation: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	var responseText strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				responseText.WriteString(string(text))
			}
		}
	}

	result := LLMResponse{
		Text:       strings.TrimSpace(responseText.String()),
		StopReason: candidate.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

// geminiHistory splits messages into chat history and the parts of the final
// turn. Assistant turns take the "model" role; turns without parts are skipped.
func geminiHistory(msgs []ChatMessage) ([]*genai.Content, []genai.Part) {
	if len(msgs) == 0 {
		return nil, nil
	}
	var history []*genai.Content
	for _, msg := range msgs[:len(msgs)-1] {
		parts := geminiParts(msg)
		if len(parts) == 0 {
			continue
		}
		role := "user"
		if msg.Role == ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: parts})
	}
	return history, geminiParts(msgs[len(msgs)-1])
}

func geminiParts(msg ChatMessage) []genai.Part {
	parts := make([]genai.Part, 0, len(msg.Attachments)+1)
	if msg.Content != "" {
		parts = append(parts, genai.Text(msg.Content))
	}
	for _, att := range msg.Attachments {
		if len(att.Data) == 0 {
			continue
		}
		parts = append(parts, genai.Blob{MIMEType: att.MIMEType, Data: att.Data})
	}
	return parts
}

// Close releases resources held by the Gemini client.
func (c *GeminiLLMClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
