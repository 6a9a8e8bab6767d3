package entity

// Activity represents one entry of a user's activity feed
type Activity struct {
	Id        int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId    string  `json:"user_id" gorm:"column:user_id"`
	Type      string  `json:"type" gorm:"column:type"`
	Payload   *string `json:"payload" gorm:"column:payload;type:json"`
	CreatedAt int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for Activity
func (Activity) TableName() string {
	return "activity"
}

// Report represents a user report filed from a DM or discussion context
type Report struct {
	Id           int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ReporterId   string  `json:"reporter_id" gorm:"column:reporter_id"`
	TargetUserId string  `json:"target_user_id" gorm:"column:target_user_id"`
	Reason       string  `json:"reason" gorm:"column:reason"`
	Details      string  `json:"details" gorm:"column:details"`
	Context      *string `json:"context" gorm:"column:context;type:json"`
	CreatedAt    int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for Report
func (Report) TableName() string {
	return "reports"
}
