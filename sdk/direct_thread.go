package sdk

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DirectEntry is one row of a DM conversation as the client renders
// it. A pending entry is an optimistic placeholder that has not been
// confirmed by the server yet; its Ident is local and Message.Id is zero.
type DirectEntry struct {
	Ident   Ident
	Message DirectMessageInfo
	Pending bool
}

// DirectMessageStore is the DM counterpart of ReplyStore: the merged
// view of one conversation's messages from the initial list, the
// realtime feed, and local optimistic placeholders. The same two-path
// rule applies: the HTTP response of a send and the feed's INSERT can
// arrive in either order and must yield the row exactly once.
type DirectMessageStore struct {
	mu             sync.Mutex
	conversationId string
	senderId       string
	entries        map[string]*DirectEntry
	now            func() time.Time
}

// NewDirectMessageStore creates an empty store for one conversation.
// senderId is the viewer; placeholders are stamped with it.
func NewDirectMessageStore(conversationId, senderId string) *DirectMessageStore {
	return &DirectMessageStore{
		conversationId: conversationId,
		senderId:       senderId,
		entries:        make(map[string]*DirectEntry),
		now:            time.Now,
	}
}

// LoadInitial replaces the store contents with a server page, keeping
// pending placeholders
func (s *DirectMessageStore) LoadInitial(rows []*DirectMessageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make(map[string]*DirectEntry)
	for key, e := range s.entries {
		if e.Pending {
			kept[key] = e
		}
	}
	s.entries = kept

	for _, row := range rows {
		if row == nil || row.Id == 0 {
			continue
		}
		s.upsertLocked(row)
	}
}

// SubmitOptimistic inserts a placeholder for a message being sent and
// returns its local Ident
func (s *DirectMessageStore) SubmitOptimistic(content string, replyTo *int64) Ident {
	ident := NewLocalIdent()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[ident.String()] = &DirectEntry{
		Ident: ident,
		Message: DirectMessageInfo{
			ConversationId:   s.conversationId,
			SenderId:         s.senderId,
			Content:          content,
			ReplyToMessageId: replyTo,
			CreatedAt:        s.now().UnixMilli(),
		},
		Pending: true,
	}
	return ident
}

// Reconcile resolves a placeholder against the confirmed server row.
// If the row already arrived over the feed the placeholder is simply
// dropped. Rows from other conversations are rejected.
func (s *DirectMessageStore) Reconcile(local Ident, row *DirectMessageInfo) error {
	if !local.IsLocal() || row == nil || row.Id == 0 || row.ConversationId != s.conversationId {
		return ErrUnknownLocalId
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[local.String()]
	if !ok || !entry.Pending {
		return ErrUnknownLocalId
	}
	delete(s.entries, local.String())

	s.upsertLocked(row)
	return nil
}

// Rollback removes a placeholder after a failed send
func (s *DirectMessageStore) Rollback(local Ident) error {
	if !local.IsLocal() {
		return ErrUnknownLocalId
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[local.String()]
	if !ok || !entry.Pending {
		return ErrUnknownLocalId
	}
	delete(s.entries, local.String())
	return nil
}

// Apply merges one confirmed server row into the store. Applying the
// same row twice is a no-op.
func (s *DirectMessageStore) Apply(row *DirectMessageInfo) {
	if row == nil || row.Id == 0 || row.ConversationId != s.conversationId {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(row)
}

// ApplyEvent validates and merges one realtime event. Events for other
// conversations are ignored.
func (s *DirectMessageStore) ApplyEvent(ev *RowEvent) error {
	if ev == nil || ev.Table != TableDirectMessages {
		return nil
	}

	row, err := DecodeDirectMessageRow(ev.Row)
	if err != nil {
		return err
	}
	if row.ConversationId != s.conversationId {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventInsert, EventUpdate:
		s.upsertLocked(row)
	case EventDelete:
		delete(s.entries, ServerIdent(row.Id).String())
	}
	return nil
}

// DirectMessageDeleter performs the backend delete for one confirmed
// message, typically (*Client).DeleteDirectMessage
type DirectMessageDeleter func(ctx context.Context, messageId int64) error

// SoftDelete optimistically marks a confirmed message deleted, runs the
// backend delete, and reverts the flag if the delete fails. Deleting a
// message that is already deleted is a no-op.
func (s *DirectMessageStore) SoftDelete(ctx context.Context, ident Ident, del DirectMessageDeleter) error {
	if ident.IsLocal() || ident.IsZero() {
		return ErrMessageNotFound
	}

	s.mu.Lock()
	entry, ok := s.entries[ident.String()]
	if !ok {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	if entry.Message.IsDeleted {
		s.mu.Unlock()
		return nil
	}
	entry.Message.IsDeleted = true
	s.mu.Unlock()

	if err := del(ctx, ident.ServerId); err != nil {
		s.mu.Lock()
		if entry, ok := s.entries[ident.String()]; ok {
			entry.Message.IsDeleted = false
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *DirectMessageStore) upsertLocked(row *DirectMessageInfo) {
	ident := ServerIdent(row.Id)
	s.entries[ident.String()] = &DirectEntry{
		Ident:   ident,
		Message: *row,
	}
}

// Get returns a copy of one entry
func (s *DirectMessageStore) Get(ident Ident) (DirectEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ident.String()]
	if !ok {
		return DirectEntry{}, false
	}
	return *entry, true
}

// Len returns the number of entries, placeholders included
func (s *DirectMessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns all entries ordered for display: created_at
// ascending, confirmed rows before placeholders at equal timestamps,
// server ids breaking remaining ties.
func (s *DirectMessageStore) Snapshot() []DirectEntry {
	s.mu.Lock()
	out := make([]DirectEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Message.CreatedAt != out[j].Message.CreatedAt {
			return out[i].Message.CreatedAt < out[j].Message.CreatedAt
		}
		return out[i].Ident.Less(out[j].Ident)
	})
	return out
}
