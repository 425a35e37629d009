package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mcp-chatbot/internal/features/tools/application"
)

// ToolCallRequest is the request structure for invoking a single tool.
type ToolCallRequest struct {
	Name string                 `json:"name" binding:"required"`
	Args map[string]interface{} `json:"args"`
}

// ToolsHandler holds the tools service.
type ToolsHandler struct {
	toolsService application.ToolsService
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(toolsService application.ToolsService) *ToolsHandler {
	return &ToolsHandler{toolsService: toolsService}
}

// ListToolsHandler handles fetching the available MCP tools.
func (h *ToolsHandler) ListToolsHandler(c *gin.Context) {
	tools, err := h.toolsService.ListTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tools: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// CallToolHandler handles invoking a specific tool.
func (h *ToolsHandler) CallToolHandler(c *gin.Context) {
	var req ToolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.toolsService.CallTool(c.Request.Context(), req.Name, req.Args)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to call tool: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
