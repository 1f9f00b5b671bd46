package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"amresponde/model"
	"amresponde/platform"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockCompleter stands in for platform.LLMClient and records every request.
type mockCompleter struct {
	response string
	err      error
	calls    [][]platform.ChatMessage
}

func (m *mockCompleter) Complete(ctx context.Context, messages []platform.ChatMessage, maxTokens int64, temperature float64) (string, error) {
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Conversation{}, &model.WidgetConversation{}))
	platform.DB = db
}

func TestAskAICreatesConversation(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{response: "A capital da França é Paris."}
	svc := NewChatService(llm)

	result, err := svc.AskAI(context.Background(), 1, "", "qual a capital da França?")
	require.NoError(t, err)
	require.NotEmpty(t, result.ConversationID)
	assert.Equal(t, "A capital da França é Paris.", result.Response)

	conv, err := model.GetConversation(result.ConversationID, 1)
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "qual a capital da França?", conv.Messages[0].Content)
	assert.Equal(t, result.Response, conv.Messages[1].Content)

	// system prompt + new user turn, no history on the first ask
	require.Len(t, llm.calls, 1)
	require.Len(t, llm.calls[0], 2)
	assert.Equal(t, platform.RoleSystem, llm.calls[0][0].Role)
	assert.Equal(t, platform.RoleUser, llm.calls[0][1].Role)
}

func TestAskAISendsHistoryInOrder(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{response: "resposta"}
	svc := NewChatService(llm)

	first, err := svc.AskAI(context.Background(), 1, "", "primeira pergunta")
	require.NoError(t, err)

	_, err = svc.AskAI(context.Background(), 1, first.ConversationID, "segunda pergunta")
	require.NoError(t, err)

	require.Len(t, llm.calls, 2)
	second := llm.calls[1]
	// system + user/assistant history pair + new user turn
	require.Len(t, second, 4)
	assert.Equal(t, platform.RoleSystem, second[0].Role)
	assert.Equal(t, "primeira pergunta", second[1].Content)
	assert.Equal(t, "resposta", second[2].Content)
	assert.Equal(t, platform.RoleAssistant, second[2].Role)
	assert.Equal(t, "segunda pergunta", second[3].Content)

	conv, err := model.GetConversation(first.ConversationID, 1)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 4)
}

func TestAskAITitleFromLongFirstMessage(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{response: "ok"}
	svc := NewChatService(llm)

	long := strings.Repeat("pergunta ", 10)
	result, err := svc.AskAI(context.Background(), 1, "", long)
	require.NoError(t, err)

	conv, err := model.GetConversation(result.ConversationID, 1)
	require.NoError(t, err)
	assert.Equal(t, string([]rune(long)[:50])+"...", conv.Title)
}

func TestAskAIRequiresAuthenticatedUser(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{response: "ok"}
	svc := NewChatService(llm)

	_, err := svc.AskAI(context.Background(), 0, "", "oi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, llm.calls)
}

func TestAskAIUpstreamFailurePersistsNothing(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{err: errors.New("connection reset")}
	svc := NewChatService(llm)

	_, err := svc.AskAI(context.Background(), 1, "", "oi")
	assert.ErrorIs(t, err, ErrUpstream)

	convs, err := model.ListConversations(1)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestAskAIUnknownOrForeignConversation(t *testing.T) {
	setupTestDB(t)
	llm := &mockCompleter{response: "ok"}
	svc := NewChatService(llm)

	_, err := svc.AskAI(context.Background(), 1, "missing-id", "oi")
	assert.ErrorIs(t, err, model.ErrNotFound)

	owned, err := svc.AskAI(context.Background(), 1, "", "minha conversa")
	require.NoError(t, err)

	// another user probing an existing id sees the same not-found kind
	_, err = svc.AskAI(context.Background(), 2, owned.ConversationID, "oi")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
