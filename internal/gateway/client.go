package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/mbeoliero/kit/log"
	"github.com/servicioshogar/chat/internal/service"
	"github.com/servicioshogar/chat/pkg/errcode"
)

// Client represents a connected WebSocket client
type Client struct {
	mu        sync.Mutex
	conn      ClientConn
	UserId    string
	Token     string
	ConnId    string
	server    *WsServer
	closed    atomic.Bool
	closedErr error
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new client
func NewClient(conn ClientConn, userId, token, connId string, server *WsServer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:   conn,
		UserId: userId,
		Token:  token,
		ConnId: connId,
		server: server,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the client message handling
func (c *Client) Start() {
	go c.readLoop()
}

// readLoop continuously reads frames from the connection
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			c.closedErr = ErrPanic
			log.CtxError(c.ctx, "client read loop panic: user_id=%s, error=%v", c.UserId, r)
		}
		c.close()
	}()

	for {
		message, err := c.conn.ReadMessage()
		if err != nil {
			log.CtxDebug(c.ctx, "read message error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}

		if c.closed.Load() {
			c.closedErr = ErrConnClosed
			return
		}

		if err := c.handleFrame(message); err != nil {
			log.CtxWarn(c.ctx, "handle frame error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}
	}
}

// handleFrame handles a single incoming frame. Protocol violations are
// reported back as error frames; only transport failures end the loop.
func (c *Client) handleFrame(message []byte) error {
	var frame ClientFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return c.sendError(errcode.ErrInvalidProtocol)
	}

	log.CtxDebug(c.ctx, "received frame: type=%s, user_id=%s", frame.Type, c.UserId)

	switch frame.Type {
	case FrameJoinConversation:
		return c.handleJoin(&frame)
	case FrameLeaveConversation:
		return c.handleLeave(&frame)
	case FrameSendMessage:
		return c.handleSend(&frame)
	case FrameTyping:
		return c.handleTyping(&frame, true)
	case FrameStopTyping:
		return c.handleTyping(&frame, false)
	default:
		return c.sendError(errcode.ErrInvalidProtocol)
	}
}

// handleJoin puts the client in a conversation room. Joining also marks
// the conversation read, since the client is now looking at it.
func (c *Client) handleJoin(frame *ClientFrame) error {
	if frame.ConversationId <= 0 {
		return c.sendError(errcode.ErrInvalidParam)
	}

	ok, err := c.server.guard.CanAccess(c.ctx, c.UserId, frame.ConversationId)
	if err != nil {
		log.CtxError(c.ctx, "room access check failed: user_id=%s, conversation_id=%d, error=%v", c.UserId, frame.ConversationId, err)
		return c.sendError(errcode.ErrInternalServer)
	}
	if !ok {
		return c.sendError(errcode.ErrNotParticipant)
	}

	c.server.JoinRoom(frame.ConversationId, c.UserId)

	marked, err := c.server.guard.MarkConversationRead(c.ctx, c.UserId, frame.ConversationId)
	if err != nil {
		log.CtxWarn(c.ctx, "mark read on join failed: user_id=%s, conversation_id=%d, error=%v", c.UserId, frame.ConversationId, err)
		marked = 0
	}

	return c.writeFrame(&JoinedFrame{
		Type:           FrameJoined,
		ConversationId: frame.ConversationId,
		MarkedRead:     marked,
	})
}

// handleLeave removes the client from a conversation room
func (c *Client) handleLeave(frame *ClientFrame) error {
	if frame.ConversationId <= 0 {
		return c.sendError(errcode.ErrInvalidParam)
	}

	c.server.LeaveRoom(frame.ConversationId, c.UserId)

	return c.writeFrame(&LeftFrame{
		Type:           FrameLeft,
		ConversationId: frame.ConversationId,
	})
}

// handleSend persists the message through the service layer. The
// new_message broadcast, sender echo included, happens on the push
// path once the seq is assigned.
func (c *Client) handleSend(frame *ClientFrame) error {
	req := &service.SendMessageRequest{
		ConversationId: frame.ConversationId,
		ClientMsgId:    frame.ClientMsgId,
		MessageType:    frame.MessageType,
		Content:        frame.Content,
	}

	_, err := c.server.sender.SendMessage(c.ctx, c.UserId, req)
	if err != nil {
		if e, ok := err.(*errcode.Error); ok {
			return c.sendError(e)
		}
		return c.sendError(errcode.ErrSendFailed)
	}

	return nil
}

// handleTyping relays a typing indicator to the other room members
func (c *Client) handleTyping(frame *ClientFrame, typing bool) error {
	if frame.ConversationId <= 0 {
		return c.sendError(errcode.ErrInvalidParam)
	}
	if !c.server.InRoom(frame.ConversationId, c.UserId) {
		return c.sendError(errcode.ErrNotInRoom)
	}

	c.server.BroadcastTyping(frame.ConversationId, c.UserId, typing)
	return nil
}

// sendError sends an error frame
func (c *Client) sendError(e *errcode.Error) error {
	return c.writeFrame(&ErrorFrame{
		Type:    FrameError,
		Code:    e.Code,
		Message: e.Msg,
	})
}

// writeFrame marshals and writes a frame to the connection
func (c *Client) writeFrame(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteRaw(data)
}

// WriteRaw writes pre-encoded frame bytes to the connection
func (c *Client) WriteRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrConnClosed
	}
	return c.conn.WriteMessage(data)
}

// Close closes the client connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil
	}

	c.closed.Store(true)
	c.cancel()
	return c.conn.Close()
}

// close handles cleanup when connection is closed
func (c *Client) close() {
	c.Close()
	c.server.UnregisterClient(c)
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
