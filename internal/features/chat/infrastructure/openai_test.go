package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-chatbot/internal/config"
	"mcp-chatbot/internal/features/chat/domain"
	"mcp-chatbot/internal/mcp"
)

func newOpenAITestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(&config.LLM{
		APIKey:    "test-key",
		Model:     "gpt-test",
		Endpoint:  srv.URL,
		MaxTokens: 512,
	})
	require.NoError(t, err)
	return p
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(&config.LLM{})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestOpenAICompleteText(t *testing.T) {
	var captured openai.ChatCompletionRequest
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Hi there"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{TotalTokens: 15},
		})
	})

	resp, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []domain.Message{domain.TextMessage(domain.RoleUser, "Hello")},
		Tools: []mcp.Tool{{
			Name:        "echo",
			Description: "Echo text back",
			InputSchema: map[string]interface{}{"type": "object"},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, captured.Tools[0].Type)
	assert.Equal(t, "echo", captured.Tools[0].Function.Name)

	require.Len(t, resp.Content, 1)
	assert.Equal(t, domain.BlockText, resp.Content[0].Type)
	assert.Equal(t, "Hi there", resp.Content[0].Text)
	assert.Equal(t, StopEndTurn, resp.StopReason)
	assert.Equal(t, 15, resp.TokensUsed)
}

func TestOpenAICompleteToolCalls(t *testing.T) {
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: "assistant",
					ToolCalls: []openai.ToolCall{{
						ID:   "call_1",
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      "echo",
							Arguments: `{"text":"hi"}`,
						},
					}},
				},
				FinishReason: openai.FinishReasonToolCalls,
			}},
		})
	})

	resp, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []domain.Message{domain.TextMessage(domain.RoleUser, "Hello")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, domain.BlockToolUse, resp.Content[0].Type)
	assert.Equal(t, "call_1", resp.Content[0].ID)
	assert.Equal(t, "echo", resp.Content[0].Name)
	assert.Equal(t, "hi", resp.Content[0].Input["text"])
	assert.Equal(t, StopToolUse, resp.StopReason)
}

func TestOpenAIMalformedToolArguments(t *testing.T) {
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: "assistant",
					ToolCalls: []openai.ToolCall{{
						ID:       "call_1",
						Type:     openai.ToolTypeFunction,
						Function: openai.FunctionCall{Name: "echo", Arguments: "{not json"},
					}},
				},
			}},
		})
	})

	_, err := p.Complete(context.Background(), &CompletionRequest{
		Messages: []domain.Message{domain.TextMessage(domain.RoleUser, "Hello")},
	})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestOpenAIToChatMessages(t *testing.T) {
	p := &OpenAIProvider{}

	messages, err := p.toChatMessages(&CompletionRequest{
		System: "Be helpful.",
		Messages: []domain.Message{
			domain.TextMessage(domain.RoleUser, "What is the weather?"),
			{Role: domain.RoleAssistant, Content: []domain.ContentBlock{
				{Type: domain.BlockText, Text: "Checking."},
				{Type: domain.BlockToolUse, ID: "call_1", Name: "weather", Input: map[string]interface{}{"city": "Oslo"}},
			}},
			{Role: domain.RoleUser, Content: []domain.ContentBlock{
				{Type: domain.BlockToolResult, ToolUseID: "call_1", Content: []domain.ContentBlock{
					{Type: domain.BlockText, Text: "12C, rain"},
				}},
			}},
		},
	})
	require.NoError(t, err)
	require.Len(t, messages, 4)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)

	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "call_1", messages[2].ToolCalls[0].ID)
	assert.JSONEq(t, `{"city":"Oslo"}`, messages[2].ToolCalls[0].Function.Arguments)

	assert.Equal(t, openai.ChatMessageRoleTool, messages[3].Role)
	assert.Equal(t, "call_1", messages[3].ToolCallID)
	assert.Equal(t, "12C, rain", messages[3].Content)
}

func TestOpenAIUnsupportedRole(t *testing.T) {
	p := &OpenAIProvider{}
	_, err := p.toChatMessages(&CompletionRequest{
		Messages: []domain.Message{{Role: "narrator"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message role")
}
