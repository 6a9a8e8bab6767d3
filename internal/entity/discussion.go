package entity

// Discussion represents a threaded discussion inside a room
type Discussion struct {
	Id        string `json:"id" gorm:"column:id;primaryKey"`
	RoomId    string `json:"room_id" gorm:"column:room_id"`
	StarterId string `json:"starter_id" gorm:"column:starter_id"`
	Title     string `json:"title" gorm:"column:title"`
	Body      string `json:"body" gorm:"column:body"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt int64  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Discussion
func (Discussion) TableName() string {
	return "discussions"
}

// DiscussionInfo represents discussion info for API response.
// StarterId is deliberately absent: discussion authorship is only ever
// exposed through aliases.
type DiscussionInfo struct {
	Id         string `json:"id"`
	RoomId     string `json:"room_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ReplyCount int64  `json:"reply_count"`
	CreatedAt  int64  `json:"created_at"`
}

// ToDiscussionInfo converts Discussion to DiscussionInfo
func (d *Discussion) ToDiscussionInfo(replyCount int64) *DiscussionInfo {
	return &DiscussionInfo{
		Id:         d.Id,
		RoomId:     d.RoomId,
		Title:      d.Title,
		Body:       d.Body,
		ReplyCount: replyCount,
		CreatedAt:  d.CreatedAt,
	}
}

// DiscussionAlias maps a (discussion, user) pair to its pseudonymous label.
// The starter gets is_op, everyone else a small sequential integer.
type DiscussionAlias struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	DiscussionId string `json:"discussion_id" gorm:"column:discussion_id"`
	UserId       string `json:"user_id" gorm:"column:user_id"`
	IsOp         bool   `json:"is_op" gorm:"column:is_op"`
	Alias        *int32 `json:"alias" gorm:"column:alias"`
	CreatedAt    int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for DiscussionAlias
func (DiscussionAlias) TableName() string {
	return "discussion_aliases"
}

// AliasInfo is the wire shape for an alias lookup. The user id never
// travels back with it.
type AliasInfo struct {
	IsOp  bool   `json:"is_op"`
	Alias *int32 `json:"alias"`
}

// ToAliasInfo converts DiscussionAlias to AliasInfo
func (a *DiscussionAlias) ToAliasInfo() *AliasInfo {
	return &AliasInfo{
		IsOp:  a.IsOp,
		Alias: a.Alias,
	}
}
