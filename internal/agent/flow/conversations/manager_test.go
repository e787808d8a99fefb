package conversations

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpy/server/internal/agent/model"
	"github.com/askpy/server/internal/agent/repo"
)

func newManager(maxTurns int) (*MessagesManager, *repo.MemoryConversationRepository) {
	store := repo.NewMemoryConversationRepository()
	cfg := model.ConversationConfig{}
	cfg.History.MaxTurns = maxTurns
	return NewMessagesManager(store, cfg), store
}

func TestBuildTranscriptEmptyConversation(t *testing.T) {
	mm, _ := newManager(10)

	transcript, err := mm.BuildTranscript(context.Background(), "unseen")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestBuildTranscriptTagsRoles(t *testing.T) {
	mm, store := newManager(10)
	ctx := context.Background()

	require.NoError(t, store.AddMessages(ctx, "c1",
		model.UserMessage("What is a list?"),
		model.AssistantMessage("A list is a mutable sequence."),
	))

	transcript, err := mm.BuildTranscript(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(transcript, "<conversation_context>"))
	assert.True(t, strings.HasSuffix(transcript, "</conversation_context>"))
	assert.Contains(t, transcript, "UserMessage(What is a list?)")
	assert.Contains(t, transcript, "AssistantMessage(A list is a mutable sequence.)")
}

func TestBuildTranscriptTrimsToRecentMessages(t *testing.T) {
	mm, store := newManager(4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.AddMessages(ctx, "c1", model.UserMessage(fmt.Sprintf("m%d", i))))
	}

	transcript, err := mm.BuildTranscript(ctx, "c1")
	require.NoError(t, err)
	assert.NotContains(t, transcript, "m5")
	for i := 6; i < 10; i++ {
		assert.Contains(t, transcript, fmt.Sprintf("m%d", i))
	}
}

func TestCommitTurnAppendsPair(t *testing.T) {
	mm, store := newManager(10)
	ctx := context.Background()

	require.NoError(t, mm.CommitTurn(ctx, "c1", "question", "answer"))

	history, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, model.Message{Role: model.RoleUser, Content: "question"}, history.Messages[0])
	assert.Equal(t, model.Message{Role: model.RoleAssistant, Content: "answer"}, history.Messages[1])
}

func TestTrimTailCopies(t *testing.T) {
	src := []model.Message{model.UserMessage("a"), model.UserMessage("b")}
	out := trimTail(src, 10)
	out[0].Content = "mutated"
	assert.Equal(t, "a", src[0].Content)
}
