package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Realtime frame types mirrored from the gateway protocol.
const (
	FrameJoinConversation  = "join_conversation"
	FrameLeaveConversation = "leave_conversation"
	FrameSendMessage       = "send_message"
	FrameTyping            = "typing"
	FrameStopTyping        = "stop_typing"

	FrameConnected         = "connected"
	FrameJoined            = "joined_conversation"
	FrameLeft              = "left_conversation"
	FrameNewMessage        = "new_message"
	FrameUserTyping        = "user_typing"
	FrameUserStoppedTyping = "user_stopped_typing"
	FrameError             = "error"
)

// RealtimeHandlers holds optional callbacks for server-pushed frames.
// Callbacks run on the read loop goroutine; keep them fast or hand off.
type RealtimeHandlers struct {
	OnConnected     func(userId, connId string)
	OnJoined        func(conversationId int64, markedRead int64)
	OnLeft          func(conversationId int64)
	OnNewMessage    func(msg *MessageInfo)
	OnTyping        func(conversationId int64, userId string)
	OnStoppedTyping func(conversationId int64, userId string)
	OnError         func(code int, message string)
	OnClose         func(err error)
}

type clientFrame struct {
	Type           string `json:"type"`
	ConversationId int64  `json:"conversationId,omitempty"`
	ClientMsgId    string `json:"clientMsgId,omitempty"`
	MessageType    string `json:"messageType,omitempty"`
	Content        string `json:"content,omitempty"`
}

// Server frames share a type tag but not a payload shape: error frames
// carry a string under "message" while new_message frames carry an
// object. Decode the tag first, then the per-type payload.
type frameHeader struct {
	Type string `json:"type"`
}

type connectedFrame struct {
	UserId string `json:"userId"`
	ConnId string `json:"connId"`
}

type joinedFrame struct {
	ConversationId int64 `json:"conversationId"`
	MarkedRead     int64 `json:"markedRead"`
}

type leftFrame struct {
	ConversationId int64 `json:"conversationId"`
}

type newMessageFrame struct {
	ConversationId int64        `json:"conversationId"`
	Message        *MessageInfo `json:"message"`
}

type typingFrame struct {
	ConversationId int64  `json:"conversationId"`
	UserId         string `json:"userId"`
}

type errorFrame struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RealtimeClient is a websocket client for the realtime gateway.
type RealtimeClient struct {
	conn     *websocket.Conn
	handlers RealtimeHandlers

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// DialRealtime connects to the realtime gateway. wsURL is the ws:// or
// wss:// endpoint, e.g. "ws://localhost:8080/ws". The token is passed
// as a query parameter, matching the gateway's handshake.
func DialRealtime(ctx context.Context, wsURL, token string, handlers RealtimeHandlers) (*RealtimeClient, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse ws url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime gateway: %w", err)
	}

	rc := &RealtimeClient{
		conn:     conn,
		handlers: handlers,
		done:     make(chan struct{}),
	}
	conn.SetPingHandler(func(appData string) error {
		rc.writeMu.Lock()
		defer rc.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	go rc.readLoop()
	return rc, nil
}

// Join subscribes this connection to a conversation room. The server
// marks the conversation read as part of the join.
func (rc *RealtimeClient) Join(conversationId int64) error {
	return rc.writeFrame(&clientFrame{Type: FrameJoinConversation, ConversationId: conversationId})
}

// Leave unsubscribes this connection from a conversation room.
func (rc *RealtimeClient) Leave(conversationId int64) error {
	return rc.writeFrame(&clientFrame{Type: FrameLeaveConversation, ConversationId: conversationId})
}

// Send sends a message through the realtime gateway. Delivery comes
// back as a new_message frame to everyone in the room, sender included.
func (rc *RealtimeClient) Send(conversationId int64, clientMsgId, messageType, content string) error {
	return rc.writeFrame(&clientFrame{
		Type:           FrameSendMessage,
		ConversationId: conversationId,
		ClientMsgId:    clientMsgId,
		MessageType:    messageType,
		Content:        content,
	})
}

// SendText sends a text message.
func (rc *RealtimeClient) SendText(conversationId int64, clientMsgId, text string) error {
	return rc.Send(conversationId, clientMsgId, MsgTypeText, text)
}

// Typing signals that the user started typing in a conversation.
func (rc *RealtimeClient) Typing(conversationId int64) error {
	return rc.writeFrame(&clientFrame{Type: FrameTyping, ConversationId: conversationId})
}

// StopTyping signals that the user stopped typing in a conversation.
func (rc *RealtimeClient) StopTyping(conversationId int64) error {
	return rc.writeFrame(&clientFrame{Type: FrameStopTyping, ConversationId: conversationId})
}

// Close closes the connection. Safe to call multiple times.
func (rc *RealtimeClient) Close() error {
	var err error
	rc.closeOnce.Do(func() {
		close(rc.done)
		err = rc.conn.Close()
	})
	return err
}

// Done is closed when the read loop exits.
func (rc *RealtimeClient) Done() <-chan struct{} {
	return rc.done
}

func (rc *RealtimeClient) writeFrame(frame *clientFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()
	return rc.conn.WriteMessage(websocket.TextMessage, data)
}

func (rc *RealtimeClient) readLoop() {
	defer rc.Close()

	for {
		_, data, err := rc.conn.ReadMessage()
		if err != nil {
			select {
			case <-rc.done:
				err = nil
			default:
			}
			if rc.handlers.OnClose != nil {
				rc.handlers.OnClose(err)
			}
			return
		}
		rc.dispatch(data)
	}
}

func (rc *RealtimeClient) dispatch(data []byte) {
	var header frameHeader
	if err := json.Unmarshal(data, &header); err != nil {
		if rc.handlers.OnError != nil {
			rc.handlers.OnError(0, fmt.Sprintf("malformed frame: %v", err))
		}
		return
	}

	switch header.Type {
	case FrameConnected:
		var f connectedFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnConnected != nil {
			rc.handlers.OnConnected(f.UserId, f.ConnId)
		}
	case FrameJoined:
		var f joinedFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnJoined != nil {
			rc.handlers.OnJoined(f.ConversationId, f.MarkedRead)
		}
	case FrameLeft:
		var f leftFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnLeft != nil {
			rc.handlers.OnLeft(f.ConversationId)
		}
	case FrameNewMessage:
		var f newMessageFrame
		if json.Unmarshal(data, &f) == nil && f.Message != nil && rc.handlers.OnNewMessage != nil {
			rc.handlers.OnNewMessage(f.Message)
		}
	case FrameUserTyping:
		var f typingFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnTyping != nil {
			rc.handlers.OnTyping(f.ConversationId, f.UserId)
		}
	case FrameUserStoppedTyping:
		var f typingFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnStoppedTyping != nil {
			rc.handlers.OnStoppedTyping(f.ConversationId, f.UserId)
		}
	case FrameError:
		var f errorFrame
		if json.Unmarshal(data, &f) == nil && rc.handlers.OnError != nil {
			rc.handlers.OnError(f.Code, f.Message)
		}
	}
}
