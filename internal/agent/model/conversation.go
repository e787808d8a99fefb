package model

import (
	"context"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Messages are immutable once
// appended to a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-authored message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ConversationRepository persists per-conversation message history keyed by
// an opaque conversation id. Implementations must serialize concurrent
// appends to the same conversation so message order is preserved.
type ConversationRepository interface {
	// AddMessages appends messages to the conversation in the given order
	// as a single atomic operation.
	AddMessages(ctx context.Context, conversationID string, messages ...Message) error

	// LoadHistory retrieves the conversation history for a conversation.
	// An unseen conversation id yields an empty history, not an error.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// MessageCount returns the number of messages in the conversation.
	MessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data.
type ConversationHistory struct {
	ConversationID string
	Messages       []Message
}
