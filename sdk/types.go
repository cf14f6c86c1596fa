package sdk

import "github.com/servicioshogar/chat/common"

// Response represents the standard API response
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// UserInfo represents public user info
type UserInfo struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// MessageInfo represents message info
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

// ConversationInfo represents conversation info
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

// MessagePage represents a page of messages with the conversation's
// current max seq
type MessagePage struct {
	Messages []*MessageInfo `json:"messages"`
	MaxSeq   int64          `json:"maxSeq"`
}

// ChatUserId builds the chat user id for a marketplace account
func ChatUserId(id int64, role string) (string, error) {
	actor := common.Actor{Id: id, Role: common.RoleType(role)}
	return actor.ToChatUserId()
}
