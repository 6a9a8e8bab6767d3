package sdk

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ReplyEntry is one row of a discussion thread as the client renders
// it. A pending entry is an optimistic placeholder that has not been
// confirmed by the server yet; its Ident is local and Message.Id is zero.
type ReplyEntry struct {
	Ident   Ident
	Message MessageInfo
	Pending bool
}

// ReplyStore holds the merged view of one discussion's replies: rows
// loaded from the API, rows pushed over the realtime feed, and local
// optimistic placeholders. All entry points are safe for concurrent use.
//
// The store is the meeting point of two independent paths that can both
// carry a confirmed reply: the HTTP response of the send and the feed's
// INSERT event. Whichever arrives first wins; the other becomes a no-op.
type ReplyStore struct {
	mu           sync.Mutex
	discussionId string
	entries      map[string]*ReplyEntry
	now          func() time.Time
}

// NewReplyStore creates an empty store for one discussion
func NewReplyStore(discussionId string) *ReplyStore {
	return &ReplyStore{
		discussionId: discussionId,
		entries:      make(map[string]*ReplyEntry),
		now:          time.Now,
	}
}

// LoadInitial replaces the store contents with a server page. Pending
// placeholders are kept: a reload must not silently drop an in-flight send.
func (s *ReplyStore) LoadInitial(rows []*MessageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make(map[string]*ReplyEntry)
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

// SubmitOptimistic inserts a placeholder for a reply being sent and
// returns its local Ident. The placeholder is stamped with the client
// clock; the server row replaces the stamp on confirmation.
func (s *ReplyStore) SubmitOptimistic(content string, parentId *int64) Ident {
	ident := NewLocalIdent()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[ident.String()] = &ReplyEntry{
		Ident: ident,
		Message: MessageInfo{
			DiscussionId: s.discussionId,
			Content:      content,
			ParentId:     parentId,
			CreatedAt:    s.now().UnixMilli(),
		},
		Pending: true,
	}
	return ident
}

// Reconcile resolves a placeholder against the confirmed server row.
// If the row already arrived over the feed the placeholder is simply
// dropped; otherwise the placeholder is swapped for the server row.
// Either way the confirmed reply ends up in the store exactly once.
// Rows from other discussions are rejected.
func (s *ReplyStore) Reconcile(local Ident, row *MessageInfo) error {
	if !local.IsLocal() || row == nil || row.Id == 0 || row.DiscussionId != s.discussionId {
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
func (s *ReplyStore) Rollback(local Ident) error {
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
// same row twice is a no-op, so duplicated feed deliveries are safe.
func (s *ReplyStore) Apply(row *MessageInfo) {
	if row == nil || row.Id == 0 || row.DiscussionId != s.discussionId {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(row)
}

// ApplyEvent validates and merges one realtime event. Events for other
// discussions are ignored.
func (s *ReplyStore) ApplyEvent(ev *RowEvent) error {
	if ev == nil || ev.Table != TableMessages {
		return nil
	}

	row, err := DecodeMessageRow(ev.Row)
	if err != nil {
		return err
	}
	if row.DiscussionId != s.discussionId {
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

// ReplyDeleter performs the backend delete for one confirmed reply,
// typically (*Client).DeleteReply
type ReplyDeleter func(ctx context.Context, messageId int64) error

// SoftDelete optimistically marks a confirmed reply deleted, runs the
// backend delete, and reverts the flag if the delete fails. Deleting a
// reply that is already deleted is a no-op.
func (s *ReplyStore) SoftDelete(ctx context.Context, ident Ident, del ReplyDeleter) error {
	if ident.IsLocal() || ident.IsZero() {
		return ErrReplyNotFound
	}

	s.mu.Lock()
	entry, ok := s.entries[ident.String()]
	if !ok {
		s.mu.Unlock()
		return ErrReplyNotFound
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

// upsertLocked inserts or replaces the entry for a server row
func (s *ReplyStore) upsertLocked(row *MessageInfo) {
	ident := ServerIdent(row.Id)
	s.entries[ident.String()] = &ReplyEntry{
		Ident:   ident,
		Message: *row,
	}
}

// Get returns a copy of one entry
func (s *ReplyStore) Get(ident Ident) (ReplyEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ident.String()]
	if !ok {
		return ReplyEntry{}, false
	}
	return *entry, true
}

// Len returns the number of entries, placeholders included
func (s *ReplyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns all entries ordered for display: created_at
// ascending, with confirmed rows before placeholders at equal
// timestamps and server ids breaking remaining ties.
func (s *ReplyStore) Snapshot() []ReplyEntry {
	s.mu.Lock()
	out := make([]ReplyEntry, 0, len(s.entries))
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
