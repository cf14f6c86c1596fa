package entity

// User is a chat-side profile mirror of a marketplace account. The id is
// the prefixed chat user id ("cu__42", "pr__7"); profile fields are synced
// from the marketplace core via the internal upsert endpoint.
type User struct {
	Id          string  `json:"id" gorm:"column:id;primaryKey"`
	DisplayName string  `json:"displayName" gorm:"column:display_name"`
	Avatar      string  `json:"avatar" gorm:"column:avatar"`
	Extra       *string `json:"extra,omitempty" gorm:"column:extra;type:text"`
	CreatedAt   int64   `json:"createdAt" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt   int64   `json:"updatedAt" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// UserInfo represents user info for API responses.
type UserInfo struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// ToUserInfo converts User to UserInfo
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		Id:          u.Id,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}
