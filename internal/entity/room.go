package entity

// Room represents a community room
type Room struct {
	Id          string `json:"id" gorm:"column:id;primaryKey"`
	Name        string `json:"name" gorm:"column:name"`
	Description string `json:"description" gorm:"column:description"`
	Sport       string `json:"sport" gorm:"column:sport"`
	CreatorId   string `json:"creator_id" gorm:"column:creator_id"`
	CreatedAt   int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt   int64  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Room
func (Room) TableName() string {
	return "rooms"
}

// RoomInfo represents room info with discussion count
type RoomInfo struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Sport           string `json:"sport"`
	DiscussionCount int64  `json:"discussion_count"`
	CreatedAt       int64  `json:"created_at"`
}
