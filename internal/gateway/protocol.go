package gateway

import (
	"encoding/json"

	"github.com/servicioshogar/chat/internal/entity"
)

// Client frame types
const (
	FrameJoinConversation  = "join_conversation"
	FrameLeaveConversation = "leave_conversation"
	FrameSendMessage       = "send_message"
	FrameTyping            = "typing"
	FrameStopTyping        = "stop_typing"
)

// Server frame types
const (
	FrameConnected         = "connected"
	FrameJoined            = "joined_conversation"
	FrameLeft              = "left_conversation"
	FrameNewMessage        = "new_message"
	FrameUserTyping        = "user_typing"
	FrameUserStoppedTyping = "user_stopped_typing"
	FrameError             = "error"
)

// ClientFrame represents any frame sent by a client. The type field
// selects which of the remaining fields are meaningful.
type ClientFrame struct {
	Type           string `json:"type"`
	ConversationId int64  `json:"conversationId,omitempty"`
	ClientMsgId    string `json:"clientMsgId,omitempty"`
	MessageType    string `json:"messageType,omitempty"`
	Content        string `json:"content,omitempty"`
}

// ConnectedFrame acknowledges a successful handshake
type ConnectedFrame struct {
	Type   string `json:"type"`
	UserId string `json:"userId"`
	ConnId string `json:"connId"`
}

// JoinedFrame acknowledges joining a conversation room. MarkedRead is
// how many messages the join flipped to read.
type JoinedFrame struct {
	Type           string `json:"type"`
	ConversationId int64  `json:"conversationId"`
	MarkedRead     int64  `json:"markedRead"`
}

// LeftFrame acknowledges leaving a conversation room
type LeftFrame struct {
	Type           string `json:"type"`
	ConversationId int64  `json:"conversationId"`
}

// NewMessageFrame carries a persisted message to room members, the
// sender included. ConversationId is repeated at the top level so
// clients can route the frame without opening the payload.
type NewMessageFrame struct {
	Type           string              `json:"type"`
	ConversationId int64               `json:"conversationId"`
	Message        *entity.MessageInfo `json:"message"`
}

// TypingFrame signals that a user started or stopped typing
type TypingFrame struct {
	Type           string `json:"type"`
	ConversationId int64  `json:"conversationId"`
	UserId         string `json:"userId"`
}

// ErrorFrame reports a failed client frame
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Encode encodes a frame to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode decodes JSON bytes to a frame
func Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
