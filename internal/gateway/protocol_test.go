package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elyaddev/Silo/pkg/constant"
)

func TestParseFilter(t *testing.T) {
	f, ok := ParseFilter("")
	assert.True(t, ok)
	assert.Empty(t, f.Column)

	f, ok = ParseFilter("conversation_id=eq.conv-1")
	assert.True(t, ok)
	assert.Equal(t, "conversation_id", f.Column)
	assert.Equal(t, "conv-1", f.Value)

	f, ok = ParseFilter("recipient_id=eq.user=eq.x")
	assert.True(t, ok)
	assert.Equal(t, "recipient_id", f.Column)
	assert.Equal(t, "user=eq.x", f.Value)

	for _, bad := range []string{"=eq.x", "col=eq.", "col", "col=x", "col==x"} {
		_, ok := ParseFilter(bad)
		assert.False(t, ok, "filter %q should be rejected", bad)
	}
}

func TestFilterKey(t *testing.T) {
	assert.Equal(t, "messages|*", Filter{}.Key("messages"))
	assert.Equal(t,
		"direct_messages|conversation_id=conv-1",
		Filter{Column: "conversation_id", Value: "conv-1"}.Key("direct_messages"))
}

func TestClientSubscriptionBookkeeping(t *testing.T) {
	c := &Client{subs: make(map[string]map[string]bool)}

	assert.True(t, c.AddSub("messages|discussion_id=d1", nil, 2))
	assert.True(t, c.AddSub("notifications|recipient_id=u1", []string{constant.EventInsert}, 2))

	// Limit reached for new keys, existing keys may still be replaced
	assert.False(t, c.AddSub("messages|*", nil, 2))
	assert.True(t, c.AddSub("messages|discussion_id=d1", []string{constant.EventUpdate}, 2))

	// Empty event set accepts everything, explicit sets are exact
	assert.True(t, c.wantsEvent("notifications|recipient_id=u1", constant.EventInsert))
	assert.False(t, c.wantsEvent("notifications|recipient_id=u1", constant.EventUpdate))
	assert.True(t, c.wantsEvent("messages|discussion_id=d1", constant.EventUpdate))
	assert.False(t, c.wantsEvent("messages|discussion_id=d1", constant.EventInsert))
	assert.False(t, c.wantsEvent("unknown|*", constant.EventInsert))

	assert.True(t, c.RemoveSub("messages|discussion_id=d1"))
	assert.False(t, c.RemoveSub("messages|discussion_id=d1"))

	keys := c.SubKeys()
	assert.Len(t, keys, 1)
	_, ok := keys["notifications|recipient_id=u1"]
	assert.True(t, ok)
}
