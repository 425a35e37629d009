package application

import (
	"context"
	"fmt"

	"mcp-chatbot/internal/mcp"
)

// ToolsService defines the interface for direct MCP tool access.
type ToolsService interface {
	// ListTools fetches the current tool list from the MCP server.
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// CallTool invokes a single tool by name.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.ToolResult, error)
}

// toolsService is the implementation of ToolsService.
type toolsService struct {
	session mcp.Session
}

// NewToolsService creates a new instance of toolsService.
func NewToolsService(session mcp.Session) ToolsService {
	return &toolsService{session: session}
}

func (s *toolsService) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	tools, err := s.session.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tools: %w", err)
	}
	return tools, nil
}

func (s *toolsService) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.ToolResult, error) {
	result, err := s.session.CallTool(ctx, name, args)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}
	return result, nil
}
