package config

import (
	"fmt"
	"os"
	"strconv"
)

// MCP transport types.
const (
	TransportStdio      = "stdio"
	TransportSSE        = "sse"
	TransportStreamable = "streamable"
)

// LLM provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Default model names per provider.
const (
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultMaxTokens      = 1000
)

// MCP holds the upstream MCP server target.
type MCP struct {
	// Transport is one of stdio, sse or streamable.
	Transport string
	// ServerScript is the path to a .py or .js MCP server launched over stdio.
	ServerScript string
	// ServerURL is the endpoint of a remote MCP server (sse/streamable).
	ServerURL string
}

// LLM holds the completion provider settings.
type LLM struct {
	Provider  string
	APIKey    string
	Model     string
	Endpoint  string
	MaxTokens int
}

// Config is the backend configuration, read once at startup and immutable
// afterwards.
type Config struct {
	BackendAddr     string
	ConversationDir string
	LogLevel        string
	LogFormat       string
	MCP             MCP
	LLM             LLM
}

// Frontend is the chat page server configuration.
type Frontend struct {
	Addr       string
	BackendURL string
	LogLevel   string
	LogFormat  string
}

// Load reads the backend configuration from the environment. Missing
// required settings are reported as errors so the process fails at startup
// instead of misbehaving later.
func Load() (*Config, error) {
	cfg := &Config{
		BackendAddr:     getenv("BACKEND_ADDR", ":8000"),
		ConversationDir: getenv("CONVERSATION_DIR", "conversations"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "console"),
		MCP: MCP{
			Transport:    os.Getenv("MCP_TRANSPORT"),
			ServerScript: os.Getenv("MCP_SERVER_SCRIPT"),
			ServerURL:    os.Getenv("MCP_SERVER_URL"),
		},
		LLM: LLM{
			Provider: getenv("LLM_PROVIDER", ProviderAnthropic),
			Model:    os.Getenv("LLM_MODEL"),
			Endpoint: os.Getenv("LLM_ENDPOINT"),
		},
	}

	if err := cfg.MCP.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.LLM.resolve(); err != nil {
		return nil, err
	}

	maxTokens := getenv("LLM_MAX_TOKENS", "")
	if maxTokens == "" {
		cfg.LLM.MaxTokens = DefaultMaxTokens
	} else {
		n, err := strconv.Atoi(maxTokens)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid LLM_MAX_TOKENS %q", maxTokens)
		}
		cfg.LLM.MaxTokens = n
	}

	return cfg, nil
}

// LoadFrontend reads the frontend configuration from the environment.
func LoadFrontend() *Frontend {
	return &Frontend{
		Addr:       getenv("FRONTEND_ADDR", ":8501"),
		BackendURL: getenv("BACKEND_URL", "http://localhost:8000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  getenv("LOG_FORMAT", "console"),
	}
}

// resolve infers the transport from which target is set and validates that
// exactly the settings the transport needs are present.
func (m *MCP) resolve() error {
	if m.Transport == "" {
		switch {
		case m.ServerScript != "":
			m.Transport = TransportStdio
		case m.ServerURL != "":
			m.Transport = TransportSSE
		default:
			return fmt.Errorf("no MCP server configured: set MCP_SERVER_SCRIPT or MCP_SERVER_URL")
		}
	}

	switch m.Transport {
	case TransportStdio:
		if m.ServerScript == "" {
			return fmt.Errorf("MCP_SERVER_SCRIPT is required for stdio transport")
		}
	case TransportSSE, TransportStreamable:
		if m.ServerURL == "" {
			return fmt.Errorf("MCP_SERVER_URL is required for %s transport", m.Transport)
		}
	default:
		return fmt.Errorf("unknown MCP_TRANSPORT %q", m.Transport)
	}
	return nil
}

func (l *LLM) resolve() error {
	switch l.Provider {
	case ProviderAnthropic:
		l.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if l.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		if l.Model == "" {
			l.Model = DefaultAnthropicModel
		}
	case ProviderOpenAI:
		l.APIKey = os.Getenv("OPENAI_API_KEY")
		if l.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if l.Model == "" {
			l.Model = DefaultOpenAIModel
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", l.Provider)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
