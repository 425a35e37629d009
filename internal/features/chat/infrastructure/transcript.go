package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mcp-chatbot/internal/features/chat/domain"
)

// TranscriptWriter persists conversation transcripts as JSON files, one per
// conversation. The file is rewritten with the full message history on each
// update, so the latest file always holds the complete conversation.
type TranscriptWriter struct {
	dir string
	mu  sync.Mutex
}

// NewTranscriptWriter creates a transcript writer rooted at dir. The
// directory is created on first write.
func NewTranscriptWriter(dir string) *TranscriptWriter {
	return &TranscriptWriter{dir: dir}
}

// Write records the current state of a conversation.
func (w *TranscriptWriter) Write(conversationID string, messages []domain.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory %s: %w", w.dir, err)
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	path := filepath.Join(w.dir, "conversation_"+conversationID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write conversation to %s: %w", path, err)
	}
	return nil
}
