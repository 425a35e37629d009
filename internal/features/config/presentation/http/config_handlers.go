package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mcp-chatbot/internal/config"
)

// RuntimeConfig is the non-secret view of the backend configuration exposed
// to the frontend. Configuration is immutable after startup, so there is no
// write counterpart.
type RuntimeConfig struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	MaxTokens    int    `json:"max_tokens"`
	MCPTransport string `json:"mcp_transport"`
}

// AppConfigHandler holds the loaded configuration.
type AppConfigHandler struct {
	cfg *config.Config
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(cfg *config.Config) *AppConfigHandler {
	return &AppConfigHandler{cfg: cfg}
}

// GetAppConfigHandler handles fetching the runtime configuration.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, RuntimeConfig{
		Provider:     h.cfg.LLM.Provider,
		Model:        h.cfg.LLM.Model,
		MaxTokens:    h.cfg.LLM.MaxTokens,
		MCPTransport: h.cfg.MCP.Transport,
	})
}
