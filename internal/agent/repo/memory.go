package repo

import (
	"context"
	"sync"

	"github.com/askpy/server/internal/agent/model"
)

// MemoryConversationRepository keeps conversation history in process memory.
// Appends to the same conversation are serialized by the store mutex, which
// preserves message ordering under concurrent turns. History survives for
// the lifetime of the process only.
type MemoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string][]model.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		conversations: make(map[string][]model.Message),
	}
}

func (r *MemoryConversationRepository) AddMessages(ctx context.Context, conversationID string, messages ...model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conversationID] = append(r.conversations[conversationID], messages...)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.conversations[conversationID]
	msgs := make([]model.Message, len(stored))
	copy(msgs, stored)
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, conversationID)
	return nil
}

func (r *MemoryConversationRepository) MessageCount(ctx context.Context, conversationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations[conversationID]), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
