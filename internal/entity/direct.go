package entity

// DirectConversation represents a DM conversation between two users
type DirectConversation struct {
	Id        string `json:"id" gorm:"column:id;primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for DirectConversation
func (DirectConversation) TableName() string {
	return "direct_conversations"
}

// DirectMember represents one participant of a DM conversation
type DirectMember struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationId string `json:"conversation_id" gorm:"column:conversation_id"`
	UserId         string `json:"user_id" gorm:"column:user_id"`
	LastReadAt     int64  `json:"last_read_at" gorm:"column:last_read_at"`
	LeftAt         *int64 `json:"left_at" gorm:"column:left_at"`
	CreatedAt      int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for DirectMember
func (DirectMember) TableName() string {
	return "direct_members"
}

// IsActive checks if the member is still in the conversation
func (m *DirectMember) IsActive() bool {
	return m.LeftAt == nil
}

// DirectMessage represents a single DM
type DirectMessage struct {
	Id               int64  `json:"id" gorm:"column:id;primaryKey"`
	ConversationId   string `json:"conversation_id" gorm:"column:conversation_id"`
	SenderId         string `json:"sender_id" gorm:"column:sender_id"`
	Content          string `json:"content" gorm:"column:content"`
	ReplyToMessageId *int64 `json:"reply_to_message_id" gorm:"column:reply_to_message_id"`
	IsDeleted        bool   `json:"is_deleted" gorm:"column:is_deleted"`
	CreatedAt        int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for DirectMessage
func (DirectMessage) TableName() string {
	return "direct_messages"
}

// DirectMessageInfo represents DM info for API response
type DirectMessageInfo struct {
	Id               int64  `json:"id"`
	ConversationId   string `json:"conversation_id"`
	SenderId         string `json:"sender_id"`
	Content          string `json:"content"`
	ReplyToMessageId *int64 `json:"reply_to_message_id"`
	IsDeleted        bool   `json:"is_deleted"`
	CreatedAt        int64  `json:"created_at"`
}

// ToDirectMessageInfo converts DirectMessage to DirectMessageInfo
func (m *DirectMessage) ToDirectMessageInfo() *DirectMessageInfo {
	return &DirectMessageInfo{
		Id:               m.Id,
		ConversationId:   m.ConversationId,
		SenderId:         m.SenderId,
		Content:          m.Content,
		ReplyToMessageId: m.ReplyToMessageId,
		IsDeleted:        m.IsDeleted,
		CreatedAt:        m.CreatedAt,
	}
}

// DirectRequest represents a DM request awaiting a decision.
// A conversation only exists once the requested user accepts.
type DirectRequest struct {
	Id             string  `json:"id" gorm:"column:id;primaryKey"`
	RequesterId    string  `json:"requester_id" gorm:"column:requester_id"`
	RequestedId    string  `json:"requested_id" gorm:"column:requested_id"`
	Status         string  `json:"status" gorm:"column:status"`
	ConversationId *string `json:"conversation_id" gorm:"column:conversation_id"`
	DecidedAt      *int64  `json:"decided_at" gorm:"column:decided_at"`
	CreatedAt      int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for DirectRequest
func (DirectRequest) TableName() string {
	return "direct_requests"
}

// IsPending checks if the request is still undecided
func (r *DirectRequest) IsPending() bool {
	return r.Status == "pending"
}

// ConversationSummary is the denormalized DM list row: last message
// preview plus the viewer's unread count. Recomputed server-side, never
// stored.
type ConversationSummary struct {
	ConversationId string `json:"conversation_id"`
	PeerId         string `json:"peer_id"`
	LastMessageId  *int64 `json:"last_message_id"`
	LastPreview    string `json:"last_preview"`
	LastMessageAt  int64  `json:"last_message_at"`
	UnreadCount    int64  `json:"unread_count"`
}
