package entity

// Profile represents a user profile in the system
type Profile struct {
	Id          string  `json:"id" gorm:"column:id;primaryKey"`
	DisplayName string  `json:"display_name" gorm:"column:display_name"`
	Avatar      string  `json:"avatar" gorm:"column:avatar"`
	Password    string  `json:"-" gorm:"column:password"`
	Sport       string  `json:"sport" gorm:"column:sport"`
	Extra       *string `json:"extra" gorm:"column:extra;type:json"`
	CreatedAt   int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt   int64   `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// ProfileInfo represents public profile info (without password)
type ProfileInfo struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Sport       string  `json:"sport"`
	Extra       *string `json:"extra,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// ToProfileInfo converts Profile to ProfileInfo
func (p *Profile) ToProfileInfo() *ProfileInfo {
	return &ProfileInfo{
		Id:          p.Id,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Sport:       p.Sport,
		Extra:       p.Extra,
		CreatedAt:   p.CreatedAt,
	}
}
