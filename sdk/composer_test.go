package sdk

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_SendSuccess(t *testing.T) {
	store := NewReplyStore("disc-1")

	sendStarted := make(chan struct{})
	release := make(chan struct{})
	sender := func(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error) {
		close(sendStarted)
		<-release
		return &MessageInfo{
			Id:           42,
			DiscussionId: req.DiscussionId,
			Content:      req.Content,
			CreatedAt:    time.Now().UnixMilli(),
		}, nil
	}
	composer := NewComposer("disc-1", store, sender)

	var wg sync.WaitGroup
	wg.Add(1)
	var row *MessageInfo
	var sendErr error
	go func() {
		defer wg.Done()
		row, sendErr = composer.Send(context.Background(), "hello", nil)
	}()

	// While the send is in flight the placeholder is the only entry
	<-sendStarted
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Pending)
	assert.True(t, snap[0].Ident.IsLocal())
	assert.Equal(t, "hello", snap[0].Message.Content)

	close(release)
	wg.Wait()

	require.NoError(t, sendErr)
	require.NotNil(t, row)
	assert.Equal(t, int64(42), row.Id)

	snap = store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
	assert.False(t, snap[0].Pending)
	assert.False(t, composer.InFlight())
}

func TestComposer_SendFailureRollsBack(t *testing.T) {
	store := NewReplyStore("disc-1")
	sender := func(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error) {
		return nil, ErrInternalServer
	}
	composer := NewComposer("disc-1", store, sender)

	_, err := composer.Send(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
	assert.False(t, composer.InFlight())
}

func TestComposer_RejectsSecondInFlightSend(t *testing.T) {
	store := NewReplyStore("disc-1")

	sendStarted := make(chan struct{})
	release := make(chan struct{})
	sender := func(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error) {
		close(sendStarted)
		<-release
		return &MessageInfo{Id: 1, DiscussionId: req.DiscussionId, Content: req.Content, CreatedAt: 1000}, nil
	}
	composer := NewComposer("disc-1", store, sender)

	done := make(chan struct{})
	go func() {
		defer close(done)
		composer.Send(context.Background(), "first", nil)
	}()

	<-sendStarted
	_, err := composer.Send(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	<-done

	// After the first send completes a new one is accepted again
	assert.False(t, composer.InFlight())
}

func TestDirectComposer_SendSuccess(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	sendStarted := make(chan struct{})
	release := make(chan struct{})
	sender := func(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error) {
		close(sendStarted)
		<-release
		return &DirectMessageInfo{
			Id:             42,
			ConversationId: req.ConversationId,
			SenderId:       "me",
			Content:        req.Content,
			CreatedAt:      time.Now().UnixMilli(),
		}, nil
	}
	composer := NewDirectComposer("conv-1", store, sender)

	var wg sync.WaitGroup
	wg.Add(1)
	var row *DirectMessageInfo
	var sendErr error
	go func() {
		defer wg.Done()
		row, sendErr = composer.Send(context.Background(), "hey", nil)
	}()

	<-sendStarted
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Pending)
	assert.Equal(t, "hey", snap[0].Message.Content)

	close(release)
	wg.Wait()

	require.NoError(t, sendErr)
	require.NotNil(t, row)
	assert.Equal(t, int64(42), row.Id)

	snap = store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(42), snap[0].Message.Id)
	assert.False(t, snap[0].Pending)
	assert.False(t, composer.InFlight())
}

func TestDirectComposer_SendFailureRollsBack(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	sender := func(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error) {
		return nil, ErrNotConversationMember
	}
	composer := NewDirectComposer("conv-1", store, sender)

	_, err := composer.Send(context.Background(), "hey", nil)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
	assert.False(t, composer.InFlight())
}

func TestDirectComposer_RejectsSecondInFlightSend(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")

	sendStarted := make(chan struct{})
	release := make(chan struct{})
	sender := func(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error) {
		close(sendStarted)
		<-release
		return &DirectMessageInfo{Id: 1, ConversationId: req.ConversationId, Content: req.Content, CreatedAt: 1000}, nil
	}
	composer := NewDirectComposer("conv-1", store, sender)

	done := make(chan struct{})
	go func() {
		defer close(done)
		composer.Send(context.Background(), "first", nil)
	}()

	<-sendStarted
	_, err := composer.Send(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	<-done
	assert.False(t, composer.InFlight())
}

func TestDirectComposer_Validation(t *testing.T) {
	store := NewDirectMessageStore("conv-1", "me")
	sender := func(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error) {
		t.Fatal("sender must not be called for invalid content")
		return nil, nil
	}
	composer := NewDirectComposer("conv-1", store, sender)

	_, err := composer.Send(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = composer.Send(context.Background(), strings.Repeat("x", MaxDirectMessageRunes+1), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)

	assert.Equal(t, 0, store.Len())
}

func TestComposer_Validation(t *testing.T) {
	store := NewReplyStore("disc-1")
	sender := func(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error) {
		t.Fatal("sender must not be called for invalid content")
		return nil, nil
	}
	composer := NewComposer("disc-1", store, sender)

	_, err := composer.Send(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = composer.Send(context.Background(), strings.Repeat("x", MaxReplyRunes+1), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)

	assert.Equal(t, 0, store.Len())
}
