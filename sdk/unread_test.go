package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadCounter_BroadcastsOnlyOnChange(t *testing.T) {
	counter := NewUnreadCounter(nil)
	counter.Set(3)

	var seen []int64
	unsubscribe := counter.Subscribe(func(v int64) {
		seen = append(seen, v)
	})
	defer unsubscribe()

	// Subscribe delivers the current value immediately
	require.Equal(t, []int64{3}, seen)

	// Marking read broadcasts the zero exactly once
	counter.Reset()
	counter.Reset()
	counter.Set(0)
	assert.Equal(t, []int64{3, 0}, seen)

	// A message arriving after the mark-read flips the badge back on
	counter.Bump(1)
	assert.Equal(t, []int64{3, 0, 1}, seen)
}

func TestUnreadCounter_Unsubscribe(t *testing.T) {
	counter := NewUnreadCounter(nil)

	var seen []int64
	unsubscribe := counter.Subscribe(func(v int64) {
		seen = append(seen, v)
	})

	counter.Set(2)
	unsubscribe()
	counter.Set(5)

	assert.Equal(t, []int64{0, 2}, seen)
}

func TestUnreadCounter_BumpClampsAtZero(t *testing.T) {
	counter := NewUnreadCounter(nil)
	counter.Set(1)
	counter.Bump(-5)
	assert.Equal(t, int64(0), counter.Get())
}

func TestUnreadCounter_Refresh(t *testing.T) {
	fetched := int64(7)
	counter := NewUnreadCounter(func(ctx context.Context) (int64, error) {
		return fetched, nil
	})

	require.NoError(t, counter.Refresh(context.Background()))
	assert.Equal(t, int64(7), counter.Get())

	fetched = 2
	require.NoError(t, counter.Refresh(context.Background()))
	assert.Equal(t, int64(2), counter.Get())
}

func TestUnreadCounter_MarkRead(t *testing.T) {
	total := int64(3)
	counter := NewUnreadCounter(func(ctx context.Context) (int64, error) {
		return total, nil
	})
	require.NoError(t, counter.Refresh(context.Background()))

	var broadcasts []int64
	unsubscribe := counter.Subscribe(func(v int64) {
		broadcasts = append(broadcasts, v)
	})
	defer unsubscribe()

	var marked []string
	mark := func(ctx context.Context, conversationId string) error {
		marked = append(marked, conversationId)
		total = 0
		return nil
	}

	// Mark-read broadcasts the new total exactly once
	require.NoError(t, counter.MarkRead(context.Background(), "conv-1", mark))
	assert.Equal(t, []string{"conv-1"}, marked)
	assert.Equal(t, []int64{3, 0}, broadcasts)

	// A message landing after the mark-read flips the badge back on
	total = 1
	require.NoError(t, counter.Refresh(context.Background()))
	assert.Equal(t, []int64{3, 0, 1}, broadcasts)
}

func TestUnreadCounter_MarkReadFailureSkipsRefresh(t *testing.T) {
	fetches := 0
	counter := NewUnreadCounter(func(ctx context.Context) (int64, error) {
		fetches++
		return 0, nil
	})

	err := counter.MarkRead(context.Background(), "conv-1", func(ctx context.Context, conversationId string) error {
		return ErrInternalServer
	})
	require.Error(t, err)
	assert.Equal(t, 0, fetches)
}

func TestBadgeText(t *testing.T) {
	assert.Equal(t, "", BadgeText(0))
	assert.Equal(t, "", BadgeText(-1))
	assert.Equal(t, "5", BadgeText(5))
	assert.Equal(t, "99", BadgeText(99))
	assert.Equal(t, "99+", BadgeText(100))
	assert.Equal(t, "99+", BadgeText(100000))
}
