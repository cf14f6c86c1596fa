package entity

// Message represents a message. Content is immutable after creation;
// seq is the authoritative ordering key within a conversation.
type Message struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationId int64  `json:"conversationId" gorm:"column:conversation_id;index:idx_msg_conv_seq"`
	Seq            int64  `json:"seq" gorm:"column:seq;index:idx_msg_conv_seq"`
	ClientMsgId    string `json:"clientMsgId,omitempty" gorm:"column:client_msg_id"`
	SenderId       string `json:"senderId" gorm:"column:sender_id"`
	MessageType    string `json:"messageType" gorm:"column:message_type"`
	Content        string `json:"content" gorm:"column:content;type:text"`
	IsRead         bool   `json:"isRead" gorm:"column:is_read"`
	ReadAt         *int64 `json:"readAt,omitempty" gorm:"column:read_at"`
	CreatedAt      int64  `json:"createdAt" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageInfo represents message info for API responses and realtime frames.
type MessageInfo struct {
	Id             int64  `json:"id"`
	ConversationId int64  `json:"conversationId"`
	Seq            int64  `json:"seq"`
	ClientMsgId    string `json:"clientMsgId,omitempty"`
	SenderId       string `json:"senderId"`
	SenderName     string `json:"senderName,omitempty"`
	MessageType    string `json:"messageType"`
	Content        string `json:"content"`
	IsRead         bool   `json:"isRead"`
	ReadAt         *int64 `json:"readAt,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
}

// ToMessageInfo converts Message to MessageInfo. The sender name is
// filled in by the caller when it has the sender's user record.
func (m *Message) ToMessageInfo() *MessageInfo {
	return &MessageInfo{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Seq:            m.Seq,
		ClientMsgId:    m.ClientMsgId,
		SenderId:       m.SenderId,
		MessageType:    m.MessageType,
		Content:        m.Content,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
