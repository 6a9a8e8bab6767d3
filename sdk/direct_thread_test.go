package sdk

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dmRow(id int64, conversationId string, createdAt int64) *DirectMessageInfo {
	return &DirectMessageInfo{
		Id:             id,
		ConversationId: conversationId,
		SenderId:       "peer-1",
		Content:        "hey",
		CreatedAt:      createdAt,
	}
}

func dmInsertEvent(t *testing.T, row *DirectMessageInfo) *RowEvent {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return &RowEvent{Table: TableDirectMessages, Type: EventInsert, Row: raw, CommitAt: row.CreatedAt}
}

func dmUpdateEvent(t *testing.T, row *DirectMessageInfo) *RowEvent {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return &RowEvent{Table: TableDirectMessages, Type: EventUpdate, Row: raw, CommitAt: row.CreatedAt}
}

func TestDirectMessageStore_ReconcileAfterFeedEvent(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	local := store.SubmitOptimistic("hey", nil)
	require.True(t, local.IsLocal())

	entry, ok := store.Get(local)
	require.True(t, ok)
	assert.Equal(t, "me", entry.Message.SenderId)

	// The feed INSERT lands before the HTTP response does
	confirmed := dmRow(42, "conv-1", time.Now().UnixMilli())
	require.NoError(t, store.ApplyEvent(dmInsertEvent(t, confirmed)))
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Reconcile(local, confirmed))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
	assert.False(t, snap[0].Pending)
}

func TestDirectMessageStore_FeedEventAfterReconcile(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	local := store.SubmitOptimistic("hey", nil)
	confirmed := dmRow(42, "conv-1", time.Now().UnixMilli())

	require.NoError(t, store.Reconcile(local, confirmed))
	require.NoError(t, store.ApplyEvent(dmInsertEvent(t, confirmed)))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
}

func TestDirectMessageStore_Rollback(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	store.Apply(dmRow(1, "conv-1", 1000))

	local := store.SubmitOptimistic("doomed", nil)
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Rollback(local))
	require.Equal(t, 1, store.Len())

	assert.ErrorIs(t, store.Rollback(local), ErrUnknownLocalId)
	assert.ErrorIs(t, store.Rollback(ServerIdent(1)), ErrUnknownLocalId)
}

func TestDirectMessageStore_ReconcileRejectsForeignConversation(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	local := store.SubmitOptimistic("hey", nil)
	err := store.Reconcile(local, dmRow(42, "conv-2", 1000))
	assert.ErrorIs(t, err, ErrUnknownLocalId)

	// The placeholder survives a rejected reconcile
	entry, ok := store.Get(local)
	require.True(t, ok)
	assert.True(t, entry.Pending)
	assert.Equal(t, 1, store.Len())
}

func TestDirectMessageStore_SnapshotOrdering(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	store.now = func() time.Time { return time.UnixMilli(2000) }

	store.Apply(dmRow(7, "conv-1", 2000))
	store.Apply(dmRow(3, "conv-1", 2000))
	store.Apply(dmRow(5, "conv-1", 1000))
	local := store.SubmitOptimistic("pending", nil)

	snap := store.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, int64(5), snap[0].Message.Id)
	assert.Equal(t, int64(3), snap[1].Message.Id)
	assert.Equal(t, int64(7), snap[2].Message.Id)
	assert.Equal(t, local, snap[3].Ident)
}

func TestDirectMessageStore_SoftDeleteIdempotent(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	store.Apply(dmRow(9, "conv-1", 1000))

	deleted := dmRow(9, "conv-1", 1000)
	deleted.Content = ""
	deleted.IsDeleted = true

	ev := dmUpdateEvent(t, deleted)
	require.NoError(t, store.ApplyEvent(ev))
	require.NoError(t, store.ApplyEvent(ev))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Message.IsDeleted)
	assert.Empty(t, snap[0].Message.Content)
}

func TestDirectMessageStore_SoftDelete(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	store.Apply(dmRow(9, "conv-1", 1000))

	var deletes int
	del := func(ctx context.Context, messageId int64) error {
		deletes++
		assert.Equal(t, int64(9), messageId)
		return nil
	}

	require.NoError(t, store.SoftDelete(context.Background(), ServerIdent(9), del))
	entry, ok := store.Get(ServerIdent(9))
	require.True(t, ok)
	assert.True(t, entry.Message.IsDeleted)

	require.NoError(t, store.SoftDelete(context.Background(), ServerIdent(9), del))
	assert.Equal(t, 1, deletes)

	failing := func(ctx context.Context, messageId int64) error { return ErrInternalServer }
	store.Apply(dmRow(10, "conv-1", 2000))
	require.Error(t, store.SoftDelete(context.Background(), ServerIdent(10), failing))
	entry, ok = store.Get(ServerIdent(10))
	require.True(t, ok)
	assert.False(t, entry.Message.IsDeleted)

	assert.ErrorIs(t, store.SoftDelete(context.Background(), ServerIdent(404), del), ErrMessageNotFound)
	assert.ErrorIs(t, store.SoftDelete(context.Background(), NewLocalIdent(), del), ErrMessageNotFound)
}

func TestDirectMessageStore_DuplicateEvents(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	rows := []*DirectMessageInfo{
		dmRow(1, "conv-1", 1000),
		dmRow(2, "conv-1", 2000),
		dmRow(3, "conv-1", 3000),
	}

	// At-least-once delivery: every event arrives twice
	for i := 0; i < 2; i++ {
		for _, row := range rows {
			require.NoError(t, store.ApplyEvent(dmInsertEvent(t, row)))
		}
	}
	require.Equal(t, 3, store.Len())
}

func TestDirectMessageStore_IgnoresOtherConversations(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	require.NoError(t, store.ApplyEvent(dmInsertEvent(t, dmRow(1, "conv-2", 1000))))
	store.Apply(dmRow(2, "conv-2", 1000))
	assert.Equal(t, 0, store.Len())
}

func TestDirectMessageStore_RejectsInvalidEventRows(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	bad := &RowEvent{
		Table: TableDirectMessages,
		Type:  EventInsert,
		Row:   json.RawMessage(`{"conversation_id":"conv-1"}`),
	}
	assert.ErrorIs(t, store.ApplyEvent(bad), ErrBadRowEvent)
	assert.Equal(t, 0, store.Len())
}

func TestDirectMessageStore_LoadInitialKeepsPending(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	local := store.SubmitOptimistic("in flight", nil)
	store.Apply(dmRow(1, "conv-1", 1000))

	store.LoadInitial([]*DirectMessageInfo{
		dmRow(2, "conv-1", 2000),
		dmRow(3, "conv-1", 3000),
	})

	require.Equal(t, 3, store.Len())
	_, ok := store.Get(local)
	assert.True(t, ok)
	_, ok = store.Get(ServerIdent(1))
	assert.False(t, ok)
}
