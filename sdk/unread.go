package sdk

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// UnreadFetch returns the authoritative unread count, typically
// (*Client).TotalUnread or (*Client).CountUnreadNotifications
type UnreadFetch func(ctx context.Context) (int64, error)

// UnreadCounter is an observable unread badge value. Observers are
// notified only when the value actually changes, so redundant refreshes
// and duplicated feed events do not re-render the badge.
type UnreadCounter struct {
	mu        sync.Mutex
	value     int64
	observers map[int64]func(int64)
	nextObs   int64
	fetch     UnreadFetch
}

// NewUnreadCounter creates a counter. fetch may be nil if Refresh and
// StartAutoRefresh are never used.
func NewUnreadCounter(fetch UnreadFetch) *UnreadCounter {
	return &UnreadCounter{
		observers: make(map[int64]func(int64)),
		fetch:     fetch,
	}
}

// Subscribe registers an observer and immediately calls it with the
// current value. The returned function removes the observer.
func (u *UnreadCounter) Subscribe(fn func(count int64)) func() {
	u.mu.Lock()
	u.nextObs++
	id := u.nextObs
	u.observers[id] = fn
	value := u.value
	u.mu.Unlock()

	fn(value)

	return func() {
		u.mu.Lock()
		delete(u.observers, id)
		u.mu.Unlock()
	}
}

// Get returns the current value
func (u *UnreadCounter) Get() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.value
}

// Set updates the value and notifies observers if it changed
func (u *UnreadCounter) Set(v int64) {
	if v < 0 {
		v = 0
	}

	u.mu.Lock()
	if u.value == v {
		u.mu.Unlock()
		return
	}
	u.value = v
	observers := u.snapshotLocked()
	u.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

// Bump adjusts the value by delta, clamped at zero
func (u *UnreadCounter) Bump(delta int64) {
	u.mu.Lock()
	v := u.value + delta
	if v < 0 {
		v = 0
	}
	if u.value == v {
		u.mu.Unlock()
		return
	}
	u.value = v
	observers := u.snapshotLocked()
	u.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

// Reset sets the value to zero
func (u *UnreadCounter) Reset() {
	u.Set(0)
}

// Refresh fetches the authoritative count and applies it
func (u *UnreadCounter) Refresh(ctx context.Context) error {
	if u.fetch == nil {
		return nil
	}
	v, err := u.fetch(ctx)
	if err != nil {
		return err
	}
	u.Set(v)
	return nil
}

// MarkReadFunc marks one conversation read, typically
// (*Client).MarkConversationRead
type MarkReadFunc func(ctx context.Context, conversationId string) error

// MarkRead marks a conversation read on the server and then refreshes
// the counter, so observers see at most one broadcast for the change
func (u *UnreadCounter) MarkRead(ctx context.Context, conversationId string, mark MarkReadFunc) error {
	if mark != nil {
		if err := mark(ctx, conversationId); err != nil {
			return err
		}
	}
	return u.Refresh(ctx)
}

// StartAutoRefresh refreshes on a fixed interval until the returned
// stop function is called. Fetch errors keep the last known value.
func (u *UnreadCounter) StartAutoRefresh(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				u.Refresh(ctx)
				cancel()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}

// Badge renders the current value for display, capped at "99+"
func (u *UnreadCounter) Badge() string {
	return BadgeText(u.Get())
}

// BadgeText renders an unread count for display. Zero renders empty,
// values above MaxBadgeCount render as "99+".
func BadgeText(v int64) string {
	switch {
	case v <= 0:
		return ""
	case v > MaxBadgeCount:
		return strconv.Itoa(MaxBadgeCount) + "+"
	default:
		return strconv.FormatInt(v, 10)
	}
}

func (u *UnreadCounter) snapshotLocked() []func(int64) {
	out := make([]func(int64), 0, len(u.observers))
	for _, fn := range u.observers {
		out = append(out, fn)
	}
	return out
}
