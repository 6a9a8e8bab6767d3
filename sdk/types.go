package sdk

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Response represents the standard API envelope
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// ProfileInfo represents a public user profile
type ProfileInfo struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Sport       string  `json:"sport"`
	Extra       *string `json:"extra,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// RoomInfo represents a community room
type RoomInfo struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Sport           string `json:"sport"`
	DiscussionCount int64  `json:"discussion_count"`
	CreatedAt       int64  `json:"created_at"`
}

// DiscussionInfo represents a discussion. Authorship is only exposed
// through aliases, so there is no starter field.
type DiscussionInfo struct {
	Id         string `json:"id"`
	RoomId     string `json:"room_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ReplyCount int64  `json:"reply_count"`
	CreatedAt  int64  `json:"created_at"`
}

// AliasInfo is one user's pseudonymous label inside a discussion
type AliasInfo struct {
	IsOp  bool   `json:"is_op"`
	Alias *int32 `json:"alias"`
}

// Label renders the alias for display
func (a *AliasInfo) Label() string {
	if a == nil {
		return "?"
	}
	if a.IsOp {
		return "OP"
	}
	if a.Alias != nil {
		return "#" + strconv.FormatInt(int64(*a.Alias), 10)
	}
	return "?"
}

// MessageInfo represents one discussion reply row as the server stores it
type MessageInfo struct {
	Id           int64   `json:"id"`
	DiscussionId string  `json:"discussion_id"`
	RoomId       string  `json:"room_id"`
	ProfileId    *string `json:"profile_id"`
	Content      string  `json:"content"`
	ParentId     *int64  `json:"parent_id"`
	IsDeleted    bool    `json:"is_deleted"`
	CreatedAt    int64   `json:"created_at"`
}

// DirectRequest represents a DM request
type DirectRequest struct {
	Id             string  `json:"id"`
	RequesterId    string  `json:"requester_id"`
	RequestedId    string  `json:"requested_id"`
	Status         string  `json:"status"`
	ConversationId *string `json:"conversation_id"`
	DecidedAt      *int64  `json:"decided_at"`
	CreatedAt      int64   `json:"created_at"`
}

// DirectMessageInfo represents one DM row
type DirectMessageInfo struct {
	Id               int64  `json:"id"`
	ConversationId   string `json:"conversation_id"`
	SenderId         string `json:"sender_id"`
	Content          string `json:"content"`
	ReplyToMessageId *int64 `json:"reply_to_message_id"`
	IsDeleted        bool   `json:"is_deleted"`
	CreatedAt        int64  `json:"created_at"`
}

// ConversationSummary is one row of the DM list
type ConversationSummary struct {
	ConversationId string `json:"conversation_id"`
	PeerId         string `json:"peer_id"`
	LastMessageId  *int64 `json:"last_message_id"`
	LastPreview    string `json:"last_preview"`
	LastMessageAt  int64  `json:"last_message_at"`
	UnreadCount    int64  `json:"unread_count"`
}

// NotificationItem is one enriched notification row
type NotificationItem struct {
	Id             int64   `json:"id"`
	Type           string  `json:"type"`
	RoomId         string  `json:"room_id"`
	DiscussionId   *string `json:"discussion_id"`
	MessageId      int64   `json:"message_id"`
	MessagePreview string  `json:"message_preview"`
	ActorIsOp      bool    `json:"actor_is_op"`
	ActorAlias     *int32  `json:"actor_alias"`
	ReadAt         *int64  `json:"read_at"`
	CreatedAt      int64   `json:"created_at"`
}

// IsUnread reports whether the notification has not been read
func (n *NotificationItem) IsUnread() bool {
	return n.ReadAt == nil
}

// Activity is one entry of the caller's activity feed
type Activity struct {
	Id        int64   `json:"id"`
	UserId    string  `json:"user_id"`
	Type      string  `json:"type"`
	Payload   *string `json:"payload"`
	CreatedAt int64   `json:"created_at"`
}

// SearchResult is one matched discussion
type SearchResult struct {
	DiscussionId string `json:"discussion_id"`
	RoomId       string `json:"room_id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	MatchedIn    string `json:"matched_in"`
	CreatedAt    int64  `json:"created_at"`
}

// RowEvent is one pushed row change from the realtime feed
type RowEvent struct {
	Table    string          `json:"table"`
	Type     string          `json:"type"`
	Row      json.RawMessage `json:"row"`
	CommitAt int64           `json:"commit_at"`
}

// DecodeMessageRow validates and decodes a messages-table event row.
// Rows missing their identity or position are rejected rather than
// silently merged.
func DecodeMessageRow(raw json.RawMessage) (*MessageInfo, error) {
	var row MessageInfo
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRowEvent, err)
	}
	if row.Id == 0 || row.DiscussionId == "" || row.CreatedAt == 0 {
		return nil, fmt.Errorf("%w: missing id, discussion_id or created_at", ErrBadRowEvent)
	}
	return &row, nil
}

// NotificationRow is one notifications-table event row. The server
// strips the actor id before publishing; read updates are partial and
// a bulk mark-all carries no id.
type NotificationRow struct {
	Id           int64   `json:"id"`
	RecipientId  string  `json:"recipient_id"`
	Type         string  `json:"type"`
	RoomId       string  `json:"room_id"`
	DiscussionId *string `json:"discussion_id"`
	MessageId    int64   `json:"message_id"`
	ReadAt       *int64  `json:"read_at"`
	CreatedAt    int64   `json:"created_at"`
}

// DecodeNotificationRow validates and decodes a notifications-table
// event row
func DecodeNotificationRow(raw json.RawMessage) (*NotificationRow, error) {
	var row NotificationRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRowEvent, err)
	}
	if row.RecipientId == "" {
		return nil, fmt.Errorf("%w: missing recipient_id", ErrBadRowEvent)
	}
	return &row, nil
}

// DecodeDirectMessageRow validates and decodes a direct_messages-table
// event row
func DecodeDirectMessageRow(raw json.RawMessage) (*DirectMessageInfo, error) {
	var row DirectMessageInfo
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRowEvent, err)
	}
	if row.Id == 0 || row.ConversationId == "" || row.CreatedAt == 0 {
		return nil, fmt.Errorf("%w: missing id, conversation_id or created_at", ErrBadRowEvent)
	}
	return &row, nil
}
