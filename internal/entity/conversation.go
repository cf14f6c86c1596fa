package entity

// Conversation represents a thread between exactly one customer and one
// provider, optionally anchored to a service request. Uniqueness of the
// participant pair is enforced by idx_conv_pair so concurrent first
// contacts converge on a single row.
type Conversation struct {
	Id                  int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	CustomerId          string `json:"customerId" gorm:"column:customer_id;uniqueIndex:idx_conv_pair"`
	ProviderId          string `json:"providerId" gorm:"column:provider_id;uniqueIndex:idx_conv_pair"`
	ServiceRequestId    *int64 `json:"serviceRequestId,omitempty" gorm:"column:service_request_id"`
	CustomerUnreadCount int64  `json:"customerUnreadCount" gorm:"column:customer_unread_count"`
	ProviderUnreadCount int64  `json:"providerUnreadCount" gorm:"column:provider_unread_count"`
	LastMessageAt       int64  `json:"lastMessageAt" gorm:"column:last_message_at"`
	CreatedAt           int64  `json:"createdAt" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt           int64  `json:"updatedAt" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// IsParticipant reports whether userId is one of the two participants.
func (c *Conversation) IsParticipant(userId string) bool {
	return userId == c.CustomerId || userId == c.ProviderId
}

// CounterpartOf returns the other participant's user id. Empty string
// if userId is not a participant.
func (c *Conversation) CounterpartOf(userId string) string {
	switch userId {
	case c.CustomerId:
		return c.ProviderId
	case c.ProviderId:
		return c.CustomerId
	}
	return ""
}

// UnreadFor returns the unread counter belonging to userId.
func (c *Conversation) UnreadFor(userId string) int64 {
	switch userId {
	case c.CustomerId:
		return c.CustomerUnreadCount
	case c.ProviderId:
		return c.ProviderUnreadCount
	}
	return 0
}

// ConversationInfo represents conversation info for API responses,
// enriched with the counterpart's identity and the latest message.
type ConversationInfo struct {
	Id               int64        `json:"id"`
	CustomerId       string       `json:"customerId"`
	ProviderId       string       `json:"providerId"`
	ServiceRequestId *int64       `json:"serviceRequestId,omitempty"`
	OtherUserId      string       `json:"otherUserId"`
	OtherUserName    string       `json:"otherUserName"`
	OtherUserAvatar  string       `json:"otherUserAvatar,omitempty"`
	LastMessage      *MessageInfo `json:"lastMessage,omitempty"`
	UnreadCount      int64        `json:"unreadCount"`
	MaxSeq           int64        `json:"maxSeq"`
	LastMessageAt    int64        `json:"lastMessageAt"`
	CreatedAt        int64        `json:"createdAt"`
}
