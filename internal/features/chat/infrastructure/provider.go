package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"mcp-chatbot/internal/config"
	"mcp-chatbot/internal/features/chat/domain"
	"mcp-chatbot/internal/mcp"
)

// Stop reasons reported by providers.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// CompletionRequest carries the conversation so far plus the tools the
// assistant may call.
type CompletionRequest struct {
	System   string
	Messages []domain.Message
	Tools    []mcp.Tool
}

// CompletionResponse is a single assistant turn.
type CompletionResponse struct {
	Content    []domain.ContentBlock
	StopReason string
	TokensUsed int
}

// Provider defines the interface for LLM completion providers.
type Provider interface {
	// Complete produces the next assistant turn for the conversation.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider identifier (e.g., "anthropic", "openai").
	Name() string
}

// Common errors
var (
	// ErrAPIKeyMissing is returned when the API key is not set.
	ErrAPIKeyMissing = errors.New("API key is required")

	// ErrRateLimited is returned when the provider rate limits the request.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrInvalidResponse is returned when the provider response cannot be used.
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// ProviderError wraps errors from LLM providers with additional context.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProvider creates a provider based on the configuration.
func NewProvider(cfg *config.LLM) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
