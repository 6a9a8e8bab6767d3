package entity

// Message represents a discussion reply. Replies are never hard-deleted:
// is_deleted hides the content while the row keeps its position.
type Message struct {
	Id           int64   `json:"id" gorm:"column:id;primaryKey"`
	DiscussionId string  `json:"discussion_id" gorm:"column:discussion_id"`
	RoomId       string  `json:"room_id" gorm:"column:room_id"`
	ProfileId    *string `json:"profile_id" gorm:"column:profile_id"`
	Content      string  `json:"content" gorm:"column:content"`
	ParentId     *int64  `json:"parent_id" gorm:"column:parent_id"`
	IsDeleted    bool    `json:"is_deleted" gorm:"column:is_deleted"`
	CreatedAt    int64   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    int64   `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageInfo represents reply info for API response
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

// ToMessageInfo converts Message to MessageInfo
func (m *Message) ToMessageInfo() *MessageInfo {
	return &MessageInfo{
		Id:           m.Id,
		DiscussionId: m.DiscussionId,
		RoomId:       m.RoomId,
		ProfileId:    m.ProfileId,
		Content:      m.Content,
		ParentId:     m.ParentId,
		IsDeleted:    m.IsDeleted,
		CreatedAt:    m.CreatedAt,
	}
}
