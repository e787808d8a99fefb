package conversations

import (
	"context"
	"strings"

	"github.com/askpy/server/internal/agent/model"
)

// MessagesManager mediates between the orchestrator and the conversation
// store: it renders prior turns into prompt context and commits completed
// turns. It never writes mid-turn, so a failed turn leaves no trace.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	historyMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		historyMaxTurns:  config.History.MaxTurns,
	}
}

// BuildTranscript renders the most recent messages of the conversation as a
// tagged transcript block for prompt context. An unseen conversation yields
// an empty string.
func (cm *MessagesManager) BuildTranscript(ctx context.Context, conversationID string) (string, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if len(history.Messages) == 0 {
		return "", nil
	}

	recentMessages := trimTail(history.Messages, cm.historyMaxTurns)

	var contextBuilder strings.Builder
	contextBuilder.WriteString("<conversation_context>\n")
	for _, msg := range recentMessages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			contextBuilder.WriteString("UserMessage(" + msg.Content + ")\n")
		case model.RoleAssistant:
			contextBuilder.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	contextBuilder.WriteString("</conversation_context>")
	return contextBuilder.String(), nil
}

// CommitTurn appends the turn's user message and the single assistant reply
// as one atomic store operation. Called exactly once per completed turn.
func (cm *MessagesManager) CommitTurn(ctx context.Context, conversationID, query, reply string) error {
	return cm.conversationRepo.AddMessages(ctx, conversationID,
		model.UserMessage(query),
		model.AssistantMessage(reply),
	)
}

// ====================== Helper function ======================
func trimTail(messages []model.Message, maxTurns int) []model.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]model.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]model.Message, len(source))
	copy(result, source)
	return result
}
