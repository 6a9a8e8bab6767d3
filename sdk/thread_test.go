package sdk

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgRow(id int64, discussionId string, createdAt int64) *MessageInfo {
	return &MessageInfo{
		Id:           id,
		DiscussionId: discussionId,
		RoomId:       "room-1",
		Content:      "hello",
		CreatedAt:    createdAt,
	}
}

func insertEvent(t *testing.T, row *MessageInfo) *RowEvent {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return &RowEvent{Table: TableMessages, Type: EventInsert, Row: raw, CommitAt: row.CreatedAt}
}

func updateEvent(t *testing.T, row *MessageInfo) *RowEvent {
	t.Helper()
	raw, err := json.Marshal(row)
	require.NoError(t, err)
	return &RowEvent{Table: TableMessages, Type: EventUpdate, Row: raw, CommitAt: row.CreatedAt}
}

func TestReplyStore_ReconcileAfterFeedEvent(t *testing.T) {
	store := NewReplyStore("disc-1")

	local := store.SubmitOptimistic("hello", nil)
	require.True(t, local.IsLocal())
	require.Equal(t, 1, store.Len())

	// The feed INSERT for the confirmed row lands before the HTTP
	// response does.
	confirmed := msgRow(42, "disc-1", time.Now().UnixMilli())
	require.NoError(t, store.ApplyEvent(insertEvent(t, confirmed)))
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Reconcile(local, confirmed))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
	assert.False(t, snap[0].Pending)
}

func TestReplyStore_FeedEventAfterReconcile(t *testing.T) {
	store := NewReplyStore("disc-1")

	local := store.SubmitOptimistic("hello", nil)
	confirmed := msgRow(42, "disc-1", time.Now().UnixMilli())

	require.NoError(t, store.Reconcile(local, confirmed))
	require.NoError(t, store.ApplyEvent(insertEvent(t, confirmed)))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
}

func TestReplyStore_Rollback(t *testing.T) {
	store := NewReplyStore("disc-1")
	store.Apply(msgRow(1, "disc-1", 1000))

	local := store.SubmitOptimistic("doomed", nil)
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Rollback(local))
	require.Equal(t, 1, store.Len())

	// A second rollback of the same placeholder must fail
	assert.ErrorIs(t, store.Rollback(local), ErrUnknownLocalId)

	// Rollback never touches confirmed rows
	assert.ErrorIs(t, store.Rollback(ServerIdent(1)), ErrUnknownLocalId)
	require.Equal(t, 1, store.Len())
}

func TestReplyStore_ReconcileUnknownLocalId(t *testing.T) {
	store := NewReplyStore("disc-1")
	err := store.Reconcile(NewLocalIdent(), msgRow(5, "disc-1", 1000))
	assert.ErrorIs(t, err, ErrUnknownLocalId)
}

func TestReplyStore_ReconcileRejectsForeignDiscussion(t *testing.T) {
	store := NewReplyStore("disc-1")

	local := store.SubmitOptimistic("hello", nil)
	err := store.Reconcile(local, msgRow(42, "disc-2", 1000))
	assert.ErrorIs(t, err, ErrUnknownLocalId)

	// The placeholder survives a rejected reconcile and the foreign row
	// never enters the collection
	entry, ok := store.Get(local)
	require.True(t, ok)
	assert.True(t, entry.Pending)
	assert.Equal(t, 1, store.Len())
}

func TestReplyStore_SnapshotOrdering(t *testing.T) {
	store := NewReplyStore("disc-1")
	store.now = func() time.Time { return time.UnixMilli(2000) }

	store.Apply(msgRow(7, "disc-1", 2000))
	store.Apply(msgRow(3, "disc-1", 2000))
	store.Apply(msgRow(5, "disc-1", 1000))
	local := store.SubmitOptimistic("pending", nil)

	snap := store.Snapshot()
	require.Len(t, snap, 4)

	// created_at ascending, server ids numerically at equal timestamps,
	// placeholders after confirmed rows
	assert.Equal(t, int64(5), snap[0].Message.Id)
	assert.Equal(t, int64(3), snap[1].Message.Id)
	assert.Equal(t, int64(7), snap[2].Message.Id)
	assert.Equal(t, local, snap[3].Ident)
	assert.True(t, snap[3].Pending)
}

func TestReplyStore_SoftDeleteIdempotent(t *testing.T) {
	store := NewReplyStore("disc-1")
	store.Apply(msgRow(9, "disc-1", 1000))

	deleted := msgRow(9, "disc-1", 1000)
	deleted.Content = ""
	deleted.IsDeleted = true

	ev := updateEvent(t, deleted)
	require.NoError(t, store.ApplyEvent(ev))
	require.NoError(t, store.ApplyEvent(ev))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Message.IsDeleted)
	assert.Empty(t, snap[0].Message.Content)
}

func TestReplyStore_DuplicateEvents(t *testing.T) {
	store := NewReplyStore("disc-1")

	rows := []*MessageInfo{
		msgRow(1, "disc-1", 1000),
		msgRow(2, "disc-1", 2000),
		msgRow(3, "disc-1", 3000),
	}

	// At-least-once delivery: every event arrives twice
	for i := 0; i < 2; i++ {
		for _, row := range rows {
			require.NoError(t, store.ApplyEvent(insertEvent(t, row)))
		}
	}

	require.Equal(t, 3, store.Len())
}

func TestReplyStore_IgnoresOtherDiscussions(t *testing.T) {
	store := NewReplyStore("disc-1")

	require.NoError(t, store.ApplyEvent(insertEvent(t, msgRow(1, "disc-2", 1000))))
	assert.Equal(t, 0, store.Len())

	store.Apply(msgRow(2, "disc-2", 1000))
	assert.Equal(t, 0, store.Len())
}

func TestReplyStore_RejectsInvalidEventRows(t *testing.T) {
	store := NewReplyStore("disc-1")

	bad := &RowEvent{
		Table: TableMessages,
		Type:  EventInsert,
		Row:   json.RawMessage(`{"discussion_id":"disc-1"}`),
	}
	err := store.ApplyEvent(bad)
	assert.ErrorIs(t, err, ErrBadRowEvent)
	assert.Equal(t, 0, store.Len())
}

func TestReplyStore_LoadInitialKeepsPending(t *testing.T) {
	store := NewReplyStore("disc-1")

	local := store.SubmitOptimistic("in flight", nil)
	store.Apply(msgRow(1, "disc-1", 1000))

	store.LoadInitial([]*MessageInfo{
		msgRow(2, "disc-1", 2000),
		msgRow(3, "disc-1", 3000),
	})

	require.Equal(t, 3, store.Len())
	_, ok := store.Get(local)
	assert.True(t, ok)
	_, ok = store.Get(ServerIdent(1))
	assert.False(t, ok)
}

func TestReplyStore_SoftDelete(t *testing.T) {
	store := NewReplyStore("disc-1")
	store.Apply(msgRow(9, "disc-1", 1000))

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

	// Second delete is a no-op that never reaches the backend
	require.NoError(t, store.SoftDelete(context.Background(), ServerIdent(9), del))
	assert.Equal(t, 1, deletes)
}

func TestReplyStore_SoftDeleteRevertsOnFailure(t *testing.T) {
	store := NewReplyStore("disc-1")
	store.Apply(msgRow(9, "disc-1", 1000))

	del := func(ctx context.Context, messageId int64) error {
		return ErrInternalServer
	}

	err := store.SoftDelete(context.Background(), ServerIdent(9), del)
	require.Error(t, err)

	entry, ok := store.Get(ServerIdent(9))
	require.True(t, ok)
	assert.False(t, entry.Message.IsDeleted)

	// Placeholders and unknown rows are rejected up front
	assert.ErrorIs(t, store.SoftDelete(context.Background(), NewLocalIdent(), del), ErrReplyNotFound)
	assert.ErrorIs(t, store.SoftDelete(context.Background(), ServerIdent(404), del), ErrReplyNotFound)
}

func TestIdent_Less(t *testing.T) {
	a := ServerIdent(3)
	b := ServerIdent(7)
	local := Ident{LocalId: "aaa"}
	local2 := Ident{LocalId: "bbb"}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Less(local))
	assert.False(t, local.Less(a))
	assert.True(t, local.Less(local2))
}
