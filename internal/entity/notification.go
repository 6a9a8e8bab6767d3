package entity

// Notification represents a reply notification for a user
type Notification struct {
	Id           int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	RecipientId  string  `json:"recipient_id" gorm:"column:recipient_id"`
	Type         string  `json:"type" gorm:"column:type"`
	RoomId       string  `json:"room_id" gorm:"column:room_id"`
	DiscussionId *string `json:"discussion_id" gorm:"column:discussion_id"`
	MessageId    int64   `json:"message_id" gorm:"column:message_id"`
	ActorId      string  `json:"actor_id" gorm:"column:actor_id"`
	ReadAt       *int64  `json:"read_at" gorm:"column:read_at"`
	CreatedAt    int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// IsUnread checks if the notification has not been read
func (n *Notification) IsUnread() bool {
	return n.ReadAt == nil
}

// NotificationRow is the realtime feed shape of a notification. The
// actor id is stripped: clients learn the actor only as an alias via
// the enriched list endpoint.
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

// ToNotificationRow converts Notification to its feed shape
func (n *Notification) ToNotificationRow() *NotificationRow {
	return &NotificationRow{
		Id:           n.Id,
		RecipientId:  n.RecipientId,
		Type:         n.Type,
		RoomId:       n.RoomId,
		DiscussionId: n.DiscussionId,
		MessageId:    n.MessageId,
		ReadAt:       n.ReadAt,
		CreatedAt:    n.CreatedAt,
	}
}

// NotificationItem is the enriched list shape: preview text and the
// actor's alias inside the discussion. The actor id itself stays
// server-side.
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
