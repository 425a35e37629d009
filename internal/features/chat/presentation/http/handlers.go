package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mcp-chatbot/internal/features/chat/application"
	"mcp-chatbot/internal/features/chat/domain"
)

// ChatHandler holds the chat service.
type ChatHandler struct {
	chatService application.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService application.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ProcessQueryHandler handles the request to process a chat query.
func (h *ChatHandler) ProcessQueryHandler(c *gin.Context) {
	var req domain.QueryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversationID, messages, err := h.chatService.ProcessQuery(c.Request.Context(), req.ConversationID, req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, domain.QueryResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}
