package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/http/sse"
	"github.com/viant/jsonrpc/transport/client/http/streamable"
	"github.com/viant/jsonrpc/transport/client/stdio"
	"github.com/viant/mcp-protocol/schema"
	mcpclient "github.com/viant/mcp/client"
	"go.uber.org/zap"

	"mcp-chatbot/internal/config"
)

const (
	clientName    = "mcp-chatbot"
	clientVersion = "0.1.0"
)

// Tool describes a tool advertised by the MCP server.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// Content is one element of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResult is the outcome of a tool invocation.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"is_error,omitempty"`
}

// Session defines the operations the backend performs against a connected
// MCP server.
type Session interface {
	// Tools returns the tool list cached at connect time.
	Tools() []Tool
	// ListTools fetches the current tool list from the server.
	ListTools(ctx context.Context) ([]Tool, error)
	// CallTool invokes a tool with the given arguments.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error)
	// Close tears down the underlying transport.
	Close() error
}

// session is the implementation of Session backed by the viant MCP client.
type session struct {
	cli    *mcpclient.Client
	cancel context.CancelFunc
	tools  []Tool
	log    *zap.Logger
}

// Connect establishes an MCP session: it builds the configured transport,
// performs the initialize handshake and caches the advertised tools. Any
// failure here is a startup failure for the backend.
//
// The transport runs on its own cancellable context so its lifetime (the
// stdio child process, the SSE stream) is owned by the session, not by the
// dial context; Close cancels it.
func Connect(ctx context.Context, cfg config.MCP, log *zap.Logger) (Session, error) {
	transportCtx, cancel := context.WithCancel(context.Background())
	t, err := newTransport(transportCtx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	cli := mcpclient.New(clientName, clientVersion, t)
	if _, err := cli.Initialize(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	s := &session{cli: cli, cancel: cancel, log: log}
	tools, err := s.ListTools(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to list MCP tools: %w", err)
	}
	s.tools = tools

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	log.Info("connected to MCP server", zap.Strings("tools", names))
	return s, nil
}

// newTransport builds a JSON-RPC transport for the configured MCP target.
func newTransport(ctx context.Context, cfg config.MCP) (transport.Transport, error) {
	switch cfg.Transport {
	case config.TransportStdio:
		command, err := launcherFor(cfg.ServerScript)
		if err != nil {
			return nil, err
		}
		t, err := stdio.New(command, stdio.WithArguments(cfg.ServerScript))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdio transport: %w", err)
		}
		return t, nil
	case config.TransportSSE:
		t, err := sse.New(ctx, cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE transport: %w", err)
		}
		return t, nil
	case config.TransportStreamable:
		t, err := streamable.New(ctx, cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create streamable transport: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown MCP transport %q", cfg.Transport)
	}
}

// launcherFor maps a server script path to the interpreter that runs it.
// Only .py and .js servers are supported.
func launcherFor(script string) (string, error) {
	switch {
	case strings.HasSuffix(script, ".py"):
		return "python", nil
	case strings.HasSuffix(script, ".js"):
		return "node", nil
	default:
		return "", fmt.Errorf("server script must be a .py or .js file, got %s", script)
	}
}

func (s *session) Tools() []Tool {
	return s.tools
}

func (s *session) ListTools(ctx context.Context) ([]Tool, error) {
	result, err := s.cli.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get tools: %w", err)
	}
	tools := make([]Tool, 0, len(result.Tools))
	for _, t := range result.Tools {
		tool := Tool{Name: t.Name}
		if t.Description != nil {
			tool.Description = *t.Description
		}
		inputSchema, err := schemaToMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("invalid input schema for tool %s: %w", t.Name, err)
		}
		tool.InputSchema = inputSchema
		tools = append(tools, tool)
	}
	return tools, nil
}

func (s *session) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error) {
	s.log.Info("calling MCP tool", zap.String("tool", name), zap.Any("args", args))
	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := s.cli.CallTool(ctx, &schema.CallToolRequestParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	ret := &ToolResult{}
	if result.IsError != nil {
		ret.IsError = *result.IsError
	}
	for _, elem := range result.Content {
		ret.Content = append(ret.Content, Content{Type: elem.Type, Text: elem.Text})
	}
	return ret, nil
}

func (s *session) Close() error {
	s.cancel()
	return nil
}

// schemaToMap converts the protocol-typed input schema into the generic map
// passed through to the LLM provider.
func schemaToMap(in schema.ToolInputSchema) (map[string]interface{}, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
