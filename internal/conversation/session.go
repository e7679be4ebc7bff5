package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// EmptyReplyText stands in for a reply that came back without text.
const EmptyReplyText = "Desculpe, não consegui processar sua solicitação."

// SessionConfig fixes the model parameters for the lifetime of a session.
type SessionConfig struct {
	Model             string
	SystemInstruction string
	Temperature       float32
	MaxOutputTokens   int32
}

// Turn is one user input: text, optionally with a single attachment.
type Turn struct {
	Text       string
	Attachment *Attachment
}

// Session is a stateful multi-turn conversation with the sales agent. It is
// owned by whoever created it; history only grows on successful exchanges.
type Session struct {
	id      string
	client  LLMClient
	cfg     SessionConfig
	logger  *logging.Logger
	metrics *metrics.CRMMetrics

	mu      sync.Mutex
	history []ChatMessage
}

// NewSession creates an empty session.
func NewSession(client LLMClient, cfg SessionConfig, logger *logging.Logger, m *metrics.CRMMetrics) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		client:  client,
		cfg:     cfg,
		logger:  logger.With("session_id", id),
		metrics: m,
	}
}

func (s *Session) ID() string { return s.id }

// History returns a copy of the accepted turns.
func (s *Session) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Send submits turn after the accumulated history and returns the agent's
// reply. On error the history is left untouched.
func (s *Session) Send(ctx context.Context, turn Turn) (string, error) {
	msg := ChatMessage{Role: ChatRoleUser, Content: turn.Text}
	if turn.Attachment != nil {
		inline, err := turn.Attachment.Inline()
		if err != nil {
			return "", err
		}
		msg.Attachments = []InlineData{inline}
		if msg.Content == "" {
			msg.Content = " "
		}
	}
	if msg.Content == "" {
		return "", ErrEmptyTurn
	}

	ctx, span := llmTracer.Start(ctx, "conversation.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("lamitex.session_id", s.id),
		attribute.Bool("lamitex.chat.attachment", turn.Attachment != nil),
	)

	s.mu.Lock()
	messages := make([]ChatMessage, 0, len(s.history)+1)
	messages = append(messages, s.history...)
	s.mu.Unlock()
	messages = append(messages, msg)

	req := LLMRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		MaxTokens:   s.cfg.MaxOutputTokens,
		Temperature: s.cfg.Temperature,
	}
	if s.cfg.SystemInstruction != "" {
		req.System = []string{s.cfg.SystemInstruction}
	}

	start := time.Now()
	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.metrics.ObserveLLMLatency("chat", "failure", time.Since(start).Seconds())
		span.RecordError(err)
		return "", fmt.Errorf("conversation: send: %w", err)
	}
	s.metrics.ObserveLLMLatency("chat", "success", time.Since(start).Seconds())

	reply := resp.Text
	if reply == "" {
		reply = EmptyReplyText
	}

	s.mu.Lock()
	s.history = append(s.history, msg, ChatMessage{Role: ChatRoleAssistant, Content: reply})
	s.mu.Unlock()

	s.logger.Debug("agent replied",
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}
