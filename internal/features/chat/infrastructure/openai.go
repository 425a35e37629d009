package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mcp-chatbot/internal/config"
	"mcp-chatbot/internal/features/chat/domain"
)

// OpenAIProvider implements the Provider interface using the OpenAI chat
// completions API. MCP tools are exposed as function tools; the provider
// translates between the conversation's tool_use/tool_result blocks and
// OpenAI's tool_calls/tool-role messages.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg *config.LLM) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for OpenAI", ErrAPIKeyMissing)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.DefaultMaxTokens
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

// Complete produces the next assistant turn for the conversation.
func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	messages, err := p.toChatMessages(req)
	if err != nil {
		return nil, err
	}

	var tools []openai.Tool
	for _, tool := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  messages,
		Tools:     tools,
	})
	if err != nil {
		return nil, &ProviderError{
			Provider: config.ProviderOpenAI,
			Message:  "API request failed",
			Cause:    err,
		}
	}
	if len(resp.Choices) == 0 {
		return nil, ErrInvalidResponse
	}

	choice := resp.Choices[0]
	var content []domain.ContentBlock
	if choice.Message.Content != "" {
		content = append(content, domain.ContentBlock{Type: domain.BlockText, Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		input := map[string]interface{}{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("%w: malformed tool arguments: %v", ErrInvalidResponse, err)
			}
		}
		content = append(content, domain.ContentBlock{
			Type:  domain.BlockToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}
	if len(content) == 0 {
		return nil, ErrInvalidResponse
	}

	stopReason := StopEndTurn
	if choice.FinishReason == openai.FinishReasonToolCalls {
		stopReason = StopToolUse
	}

	return &CompletionResponse{
		Content:    content,
		StopReason: stopReason,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// toChatMessages flattens the block-structured conversation into OpenAI chat
// messages. tool_result blocks become tool-role messages keyed by the
// originating call ID.
func (p *OpenAIProvider) toChatMessages(req *CompletionRequest) ([]openai.ChatCompletionMessage, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleAssistant:
			out := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			var texts []string
			for _, block := range msg.Content {
				switch block.Type {
				case domain.BlockText:
					texts = append(texts, block.Text)
				case domain.BlockToolUse:
					args, err := json.Marshal(block.Input)
					if err != nil {
						return nil, fmt.Errorf("failed to marshal tool arguments: %w", err)
					}
					out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
						ID:   block.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      block.Name,
							Arguments: string(args),
						},
					})
				}
			}
			out.Content = strings.Join(texts, "\n")
			messages = append(messages, out)
		case domain.RoleUser:
			var texts []string
			for _, block := range msg.Content {
				switch block.Type {
				case domain.BlockText:
					texts = append(texts, block.Text)
				case domain.BlockToolResult:
					messages = append(messages, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						ToolCallID: block.ToolUseID,
						Content:    flattenText(block.Content),
					})
				}
			}
			if len(texts) > 0 {
				messages = append(messages, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: strings.Join(texts, "\n"),
				})
			}
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return messages, nil
}

func flattenText(blocks []domain.ContentBlock) string {
	var texts []string
	for _, block := range blocks {
		if block.Type == domain.BlockText && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n")
}
