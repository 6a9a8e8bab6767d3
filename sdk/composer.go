package sdk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// Length limits mirror the server side, so obviously oversized content
// is rejected before a placeholder ever appears
const (
	MaxReplyRunes         = 4000
	MaxDirectMessageRunes = 4000
)

// ErrContentTooLong rejects content over the reply length limit
var ErrContentTooLong = errors.New("content too long")

// ReplySender posts one reply, typically (*Client).PostReply
type ReplySender func(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error)

// Composer drives optimistic reply sending for one discussion: it
// validates the draft, inserts a placeholder into the store, performs
// the send, and reconciles or rolls back depending on the outcome.
// Only one send may be in flight at a time.
type Composer struct {
	mu       sync.Mutex
	inFlight bool

	discussionId string
	store        *ReplyStore
	send         ReplySender
}

// NewComposer creates a composer over a store and a sender
func NewComposer(discussionId string, store *ReplyStore, send ReplySender) *Composer {
	return &Composer{
		discussionId: discussionId,
		store:        store,
		send:         send,
	}
}

// InFlight reports whether a send is currently pending
func (c *Composer) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Send validates and sends one reply. The placeholder is visible in the
// store for the duration of the call; on failure it is rolled back and
// the error returned, on success the confirmed row takes its place.
func (c *Composer) Send(ctx context.Context, content string, parentId *int64) (*MessageInfo, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxReplyRunes {
		return nil, ErrContentTooLong
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	local := c.store.SubmitOptimistic(trimmed, parentId)

	row, err := c.send(ctx, &PostReplyRequest{
		DiscussionId: c.discussionId,
		Content:      trimmed,
		ParentId:     parentId,
	})
	if err != nil {
		c.store.Rollback(local)
		return nil, err
	}

	c.store.Reconcile(local, row)
	return row, nil
}

// DirectMessageSender sends one DM, typically (*Client).SendDirectMessage
type DirectMessageSender func(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error)

// DirectComposer is the DM variant of Composer: same validation,
// in-flight guard and submit cycle, over a DirectMessageStore. The
// reply target is another message in the same conversation.
type DirectComposer struct {
	mu       sync.Mutex
	inFlight bool

	conversationId string
	store          *DirectMessageStore
	send           DirectMessageSender
}

// NewDirectComposer creates a composer over a DM store and a sender
func NewDirectComposer(conversationId string, store *DirectMessageStore, send DirectMessageSender) *DirectComposer {
	return &DirectComposer{
		conversationId: conversationId,
		store:          store,
		send:           send,
	}
}

// InFlight reports whether a send is currently pending
func (c *DirectComposer) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Send validates and sends one DM. On failure the placeholder is rolled
// back and the error returned; on success the confirmed row takes its
// place.
func (c *DirectComposer) Send(ctx context.Context, content string, replyTo *int64) (*DirectMessageInfo, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxDirectMessageRunes {
		return nil, ErrContentTooLong
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	local := c.store.SubmitOptimistic(trimmed, replyTo)

	row, err := c.send(ctx, &SendDirectMessageRequest{
		ConversationId:   c.conversationId,
		Content:          trimmed,
		ReplyToMessageId: replyTo,
	})
	if err != nil {
		c.store.Rollback(local)
		return nil, err
	}

	c.store.Reconcile(local, row)
	return row, nil
}
