package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcp-chatbot/internal/features/chat/domain"
	"mcp-chatbot/internal/features/chat/infrastructure"
	"mcp-chatbot/internal/mcp"
)

// maxToolRounds bounds the number of tool round-trips a single query may
// trigger before the turn is aborted.
const maxToolRounds = 10

// ChatService defines the interface for the chat application service.
type ChatService interface {
	// ProcessQuery runs one conversation turn: it sends the query to the LLM
	// together with the MCP tools, executes any requested tool calls, and
	// loops until the assistant produces a final text answer. It returns the
	// conversation ID and the messages this turn produced.
	ProcessQuery(ctx context.Context, conversationID, query string) (string, []domain.Message, error)
}

// chatService is the implementation of ChatService.
type chatService struct {
	session    mcp.Session
	provider   infrastructure.Provider
	transcript *infrastructure.TranscriptWriter
	log        *zap.Logger

	mu            sync.Mutex
	conversations map[string]*domain.Conversation
}

// NewChatService creates a new instance of chatService.
func NewChatService(session mcp.Session, provider infrastructure.Provider, transcript *infrastructure.TranscriptWriter, log *zap.Logger) ChatService {
	return &chatService{
		session:       session,
		provider:      provider,
		transcript:    transcript,
		log:           log,
		conversations: make(map[string]*domain.Conversation),
	}
}

func (s *chatService) ProcessQuery(ctx context.Context, conversationID, query string) (string, []domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.conversation(conversationID)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("processing query",
		zap.String("conversation", conv.ID),
		zap.String("query", truncate(query, 100)))

	userMessage := domain.TextMessage(domain.RoleUser, query)
	conv.Messages = append(conv.Messages, userMessage)
	s.flush(conv)

	turn := []domain.Message{userMessage}
	tools := s.session.Tools()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.provider.Complete(ctx, &infrastructure.CompletionRequest{
			Messages: conv.Messages,
			Tools:    tools,
		})
		if err != nil {
			return "", nil, fmt.Errorf("failed to call LLM: %w", err)
		}

		assistantMessage := domain.Message{Role: domain.RoleAssistant, Content: resp.Content}
		conv.Messages = append(conv.Messages, assistantMessage)
		turn = append(turn, assistantMessage)
		s.flush(conv)

		// A plain text answer ends the turn.
		if len(resp.Content) == 1 && resp.Content[0].Type == domain.BlockText {
			return conv.ID, turn, nil
		}

		var results []domain.ContentBlock
		for _, block := range resp.Content {
			if block.Type != domain.BlockToolUse {
				continue
			}
			result, err := s.session.CallTool(ctx, block.Name, block.Input)
			if err != nil {
				return "", nil, fmt.Errorf("tool execution failed: %w", err)
			}
			results = append(results, domain.ContentBlock{
				Type:      domain.BlockToolResult,
				ToolUseID: block.ID,
				Content:   toBlocks(result),
			})
		}
		if len(results) == 0 {
			// Multiple text blocks with no tool calls; nothing left to do.
			return conv.ID, turn, nil
		}

		resultMessage := domain.Message{Role: domain.RoleUser, Content: results}
		conv.Messages = append(conv.Messages, resultMessage)
		turn = append(turn, resultMessage)
		s.flush(conv)
	}

	return "", nil, fmt.Errorf("query exceeded %d tool rounds", maxToolRounds)
}

// conversation resolves an existing conversation or starts a new one when no
// ID is supplied.
func (s *chatService) conversation(id string) (*domain.Conversation, error) {
	if id == "" {
		conv := &domain.Conversation{ID: uuid.NewString()}
		s.conversations[conv.ID] = conv
		return conv, nil
	}
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return conv, nil
}

// flush persists the transcript. Failures are logged, not fatal.
func (s *chatService) flush(conv *domain.Conversation) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Write(conv.ID, conv.Messages); err != nil {
		s.log.Warn("failed to write conversation transcript",
			zap.String("conversation", conv.ID), zap.Error(err))
	}
}

func toBlocks(result *mcp.ToolResult) []domain.ContentBlock {
	blocks := make([]domain.ContentBlock, 0, len(result.Content))
	for _, content := range result.Content {
		blocks = append(blocks, domain.ContentBlock{Type: content.Type, Text: content.Text})
	}
	return blocks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
