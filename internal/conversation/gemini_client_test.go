package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeminiChat struct {
	modelID string
	req     LLMRequest
	history []*genai.Content
	sent    []genai.Part
	resp    *genai.GenerateContentResponse
	err     error
}

func (f *fakeGeminiChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.sent = parts
	return f.resp, f.err
}

func newFakeGeminiClient(chat *fakeGeminiChat) *GeminiLLMClient {
	return &GeminiLLMClient{
		modelID: "gemini-3-flash-preview",
		newChat: func(modelID string, req LLMRequest, history []*genai.Content) geminiChat {
			chat.modelID = modelID
			chat.req = req
			chat.history = history
			return chat
		},
	}
}

func TestGeminiParts(t *testing.T) {
	png := []byte("\x89PNG")
	tests := []struct {
		name string
		msg  ChatMessage
		want []genai.Part
	}{
		{name: "text only", msg: ChatMessage{Content: "Oi"}, want: []genai.Part{genai.Text("Oi")}},
		{
			name: "text and image",
			msg:  ChatMessage{Content: "Que tecido é este?", Attachments: []InlineData{{MIMEType: "image/png", Data: png}}},
			want: []genai.Part{genai.Text("Que tecido é este?"), genai.Blob{MIMEType: "image/png", Data: png}},
		},
		{
			name: "media only",
			msg:  ChatMessage{Attachments: []InlineData{{MIMEType: "audio/webm", Data: []byte("opus")}}},
			want: []genai.Part{genai.Blob{MIMEType: "audio/webm", Data: []byte("opus")}},
		},
		{
			name: "empty attachment skipped",
			msg:  ChatMessage{Content: "Oi", Attachments: []InlineData{{MIMEType: "image/png"}}},
			want: []genai.Part{genai.Text("Oi")},
		},
		{name: "nothing", msg: ChatMessage{}, want: []genai.Part{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geminiParts(tt.msg))
		})
	}
}

func TestGeminiHistory_MapsRolesAndSkipsEmptyTurns(t *testing.T) {
	history, last := geminiHistory([]ChatMessage{
		{Role: ChatRoleUser, Content: "Quero saber sobre Curvim"},
		{Role: ChatRoleAssistant, Content: "O Curvim é ideal para bancos automotivos."},
		{Role: ChatRoleUser},
		{Role: ChatRoleUser, Content: "E o preço?"},
	})

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("O Curvim é ideal para bancos automotivos.")}, history[1].Parts)
	assert.Equal(t, []genai.Part{genai.Text("E o preço?")}, last)
}

func TestGeminiLLMClient_Complete(t *testing.T) {
	chat := &fakeGeminiChat{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(" Temos o Linho "), genai.Text("Rústico. ")}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 4, TotalTokenCount: 16},
	}}
	client := newFakeGeminiClient(chat)

	resp, err := client.Complete(context.Background(), LLMRequest{
		System:      []string{"Você é o assistente da Lamitex."},
		Temperature: 0.4,
		MaxTokens:   1000,
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "Oi"},
			{Role: ChatRoleAssistant, Content: "Olá!"},
			{Role: ChatRoleUser, Content: "Tecido para sofá?", Attachments: []InlineData{{MIMEType: "image/jpeg", Data: []byte("jpg")}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Temos o Linho Rústico.", resp.Text)
	assert.Equal(t, genai.FinishReasonStop.String(), resp.StopReason)
	assert.Equal(t, TokenUsage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16}, resp.Usage)

	assert.Equal(t, "gemini-3-flash-preview", chat.modelID)
	require.Len(t, chat.history, 2)
	assert.Equal(t, "model", chat.history[1].Role)
	require.Len(t, chat.sent, 2)
	assert.Equal(t, genai.Blob{MIMEType: "image/jpeg", Data: []byte("jpg")}, chat.sent[1])
}

func TestGeminiLLMClient_RequestModelOverride(t *testing.T) {
	chat := &fakeGeminiChat{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("ok")}}}},
	}}
	client := newFakeGeminiClient(chat)

	_, err := client.Complete(context.Background(), LLMRequest{Model: "gemini-2.5-flash", Messages: []ChatMessage{{Role: ChatRoleUser, Content: "Oi"}}})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", chat.modelID)
}

func TestGeminiLLMClient_Errors(t *testing.T) {
	t.Run("no messages", func(t *testing.T) {
		_, err := newFakeGeminiClient(&fakeGeminiChat{}).Complete(context.Background(), LLMRequest{})
		assert.ErrorIs(t, err, ErrNoMessages)
	})

	t.Run("empty last turn", func(t *testing.T) {
		chat := &fakeGeminiChat{}
		_, err := newFakeGeminiClient(chat).Complete(context.Background(), LLMRequest{
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "Oi"}, {Role: ChatRoleUser}},
		})
		assert.ErrorIs(t, err, ErrEmptyTurn)
		assert.Nil(t, chat.sent)
	})

	t.Run("send failure", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		_, err := newFakeGeminiClient(&fakeGeminiChat{err: boom}).Complete(context.Background(), LLMRequest{
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "Oi"}},
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := newFakeGeminiClient(&fakeGeminiChat{resp: &genai.GenerateContentResponse{}}).Complete(context.Background(), LLMRequest{
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "Oi"}},
		})
		assert.ErrorContains(t, err, "no candidates")
	})
}

func TestConfigureModel(t *testing.T) {
	model := &genai.GenerativeModel{}
	configureModel(model, LLMRequest{System: []string{"persona", " catálogo "}, Temperature: 0.4, MaxTokens: 1000})

	require.NotNil(t, model.Temperature)
	assert.InDelta(t, 0.4, *model.Temperature, 1e-6)
	require.NotNil(t, model.MaxOutputTokens)
	assert.Equal(t, int32(1000), *model.MaxOutputTokens)
	require.NotNil(t, model.SystemInstruction)
	assert.Equal(t, []genai.Part{genai.Text("persona\n\n catálogo")}, model.SystemInstruction.Parts)

	bare := &genai.GenerativeModel{}
	configureModel(bare, LLMRequest{Temperature: -1})
	assert.Nil(t, bare.Temperature)
	assert.Nil(t, bare.MaxOutputTokens)
	assert.Nil(t, bare.SystemInstruction)
}
