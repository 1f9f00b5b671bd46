package model

import (
	"testing"
	"time"

	"amresponde/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetMsg(id, role, content, msgType string) WidgetMessage {
	return WidgetMessage{ID: id, Role: role, Content: content, Type: msgType, Timestamp: time.Now().UnixMilli()}
}

func TestAppendWidgetMessageCreatesOnFirstUse(t *testing.T) {
	setupTestDB(t)

	conv, err := GetWidgetConversation("sess-1")
	require.NoError(t, err)
	assert.Nil(t, conv)

	require.NoError(t, AppendWidgetMessage("sess-1", widgetMsg("m1", RoleUser, "oi", TypeText)))

	conv, err = GetWidgetConversation("sess-1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "m1", conv.Messages[0].ID)
}

func TestAppendWidgetMessageRoundTrip(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, AppendWidgetMessage("sess-2", widgetMsg("m1", RoleUser, "oi", TypeText)))
	reply := widgetMsg("m2", RoleAssistant, "🎨 Gerando imagem...", TypeImage)
	require.NoError(t, AppendWidgetMessage("sess-2", reply))

	conv, err := GetWidgetConversation("sess-2")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, reply, conv.Messages[1])
}

func TestWidgetSessionsAreIsolated(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, AppendWidgetMessage("sess-a", widgetMsg("a1", RoleUser, "de a", TypeText)))
	require.NoError(t, AppendWidgetMessage("sess-b", widgetMsg("b1", RoleUser, "de b", TypeText)))

	conv, err := GetWidgetConversation("sess-a")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "a1", conv.Messages[0].ID)
}

func TestPurgeStaleWidgetConversations(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, AppendWidgetMessage("old", widgetMsg("o1", RoleUser, "antiga", TypeText)))
	require.NoError(t, AppendWidgetMessage("fresh", widgetMsg("f1", RoleUser, "recente", TypeText)))

	stale := time.Now().Add(-40 * 24 * time.Hour)
	err := platform.DB.Model(&WidgetConversation{}).
		Where("session_id = ?", "old").
		Update("updated_at", stale).Error
	require.NoError(t, err)

	purged, err := PurgeStaleWidgetConversations(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	conv, err := GetWidgetConversation("old")
	require.NoError(t, err)
	assert.Nil(t, conv)

	conv, err = GetWidgetConversation("fresh")
	require.NoError(t, err)
	assert.NotNil(t, conv)
}
