package sdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFilter(t *testing.T) {
	column, value, ok := splitFilter("")
	assert.True(t, ok)
	assert.Empty(t, column)
	assert.Empty(t, value)

	column, value, ok = splitFilter("conversation_id=eq.conv-1")
	assert.True(t, ok)
	assert.Equal(t, "conversation_id", column)
	assert.Equal(t, "conv-1", value)

	// Values may themselves contain the separator
	column, value, ok = splitFilter("name=eq.a=eq.b")
	assert.True(t, ok)
	assert.Equal(t, "name", column)
	assert.Equal(t, "a=eq.b", value)

	for _, bad := range []string{"=eq.x", "column=eq.", "column", "column=x"} {
		_, _, ok := splitFilter(bad)
		assert.False(t, ok, "filter %q should be rejected", bad)
	}
}

func TestSubscriptionMatches(t *testing.T) {
	row := json.RawMessage(`{"id":42,"discussion_id":"disc-1","content":"hi"}`)
	ev := &RowEvent{Table: TableMessages, Type: EventInsert, Row: row}

	all := &subscription{table: TableMessages}
	assert.True(t, all.matches(ev))

	otherTable := &subscription{table: TableNotifications}
	assert.False(t, otherTable.matches(ev))

	byDiscussion := &subscription{table: TableMessages, column: "discussion_id", value: "disc-1"}
	assert.True(t, byDiscussion.matches(ev))

	wrongValue := &subscription{table: TableMessages, column: "discussion_id", value: "disc-2"}
	assert.False(t, wrongValue.matches(ev))

	missingColumn := &subscription{table: TableMessages, column: "room_id", value: "room-1"}
	assert.False(t, missingColumn.matches(ev))

	// Numeric columns compare by their literal rendering
	byId := &subscription{table: TableMessages, column: "id", value: "42"}
	assert.True(t, byId.matches(ev))
}

func TestDecodeMessageRow(t *testing.T) {
	good := json.RawMessage(`{"id":1,"discussion_id":"disc-1","created_at":1000}`)
	row, err := DecodeMessageRow(good)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), row.Id)

	for name, raw := range map[string]json.RawMessage{
		"missing id":         json.RawMessage(`{"discussion_id":"disc-1","created_at":1000}`),
		"missing discussion": json.RawMessage(`{"id":1,"created_at":1000}`),
		"missing created_at": json.RawMessage(`{"id":1,"discussion_id":"disc-1"}`),
		"not json":           json.RawMessage(`nope`),
	} {
		_, err := DecodeMessageRow(raw)
		assert.ErrorIs(t, err, ErrBadRowEvent, name)
	}
}

func TestDecodeNotificationRow(t *testing.T) {
	good := json.RawMessage(`{"id":1,"recipient_id":"u1","type":"reply_to_you","created_at":1000}`)
	row, err := DecodeNotificationRow(good)
	assert.NoError(t, err)
	assert.Equal(t, "u1", row.RecipientId)

	// Bulk mark-all updates carry no id but must name the recipient
	partial := json.RawMessage(`{"recipient_id":"u1","read_at":2000}`)
	row, err = DecodeNotificationRow(partial)
	assert.NoError(t, err)
	assert.NotNil(t, row.ReadAt)

	_, err = DecodeNotificationRow(json.RawMessage(`{"id":1,"created_at":1000}`))
	assert.ErrorIs(t, err, ErrBadRowEvent)
}

func TestDecodeDirectMessageRow(t *testing.T) {
	good := json.RawMessage(`{"id":1,"conversation_id":"conv-1","sender_id":"u1","created_at":1000}`)
	row, err := DecodeDirectMessageRow(good)
	assert.NoError(t, err)
	assert.Equal(t, "conv-1", row.ConversationId)

	_, err = DecodeDirectMessageRow(json.RawMessage(`{"id":1,"created_at":1000}`))
	assert.ErrorIs(t, err, ErrBadRowEvent)
}
