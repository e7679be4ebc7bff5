package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackLLMClient_PrimarySucceeds(t *testing.T) {
	primary := &stubLLM{replies: []LLMResponse{{Text: "primary"}}}
	fallback := &stubLLM{}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "oi"}}})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Empty(t, fallback.requests)
}

func TestFallbackLLMClient_UsesFallback(t *testing.T) {
	primary := &stubLLM{err: errors.New("503")}
	fallback := &stubLLM{replies: []LLMResponse{{Text: "fallback"}}}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{Model: "gemini-test", Messages: []ChatMessage{{Role: ChatRoleUser, Content: "oi"}}})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	require.Len(t, fallback.requests, 1)
	assert.Empty(t, fallback.requests[0].Model)
}

func TestFallbackLLMClient_NoFallback(t *testing.T) {
	primary := &stubLLM{err: errors.New("boom")}
	client := NewFallbackLLMClient(primary, nil, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	assert.EqualError(t, err, "boom")
}
