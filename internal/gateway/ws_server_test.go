package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/servicioshogar/chat/internal/config"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/internal/service"
	"github.com/servicioshogar/chat/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory ClientConn for tests
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) ReadMessage() ([]byte, error)       { select {} }
func (c *fakeConn) SetReadDeadline(time.Time) error    { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error   { return nil }

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) decoded(t *testing.T) []map[string]interface{} {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) lastFrame(t *testing.T) map[string]interface{} {
	t.Helper()
	frames := c.decoded(t)
	require.NotEmpty(t, frames)
	return frames[len(frames)-1]
}

// fakeSender records send requests
type fakeSender struct {
	mu   sync.Mutex
	reqs []*service.SendMessageRequest
	err  error
}

func (s *fakeSender) SendMessage(ctx context.Context, senderId string, req *service.SendMessageRequest) (*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.reqs = append(s.reqs, req)
	return &entity.Message{
		Id:             1,
		ConversationId: req.ConversationId,
		Seq:            int64(len(s.reqs)),
		SenderId:       senderId,
		MessageType:    req.MessageType,
		Content:        req.Content,
	}, nil
}

// fakeGuard grants access to a fixed set of users
type fakeGuard struct {
	allowed map[string]bool
	marked  int64
}

func (g *fakeGuard) CanAccess(ctx context.Context, userId string, conversationId int64) (bool, error) {
	return g.allowed[userId], nil
}

func (g *fakeGuard) MarkConversationRead(ctx context.Context, userId string, conversationId int64) (int64, error) {
	return g.marked, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.WebSocket.MaxConnNum = 100
	cfg.WebSocket.MaxMessageSize = MaxMessageSize
	cfg.WebSocket.PushChannelSize = 16
	cfg.WebSocket.PushWorkerNum = 1
	return cfg
}

func newTestServer(sender MessageSender, guard ConversationGuard) *WsServer {
	return NewWsServer(testConfig(), nil, sender, guard)
}

func connect(s *WsServer, userId string) (*Client, *fakeConn) {
	conn := &fakeConn{}
	client := NewClient(conn, userId, "token", "conn-"+userId, s)
	s.registerClient(context.Background(), client)
	return client, conn
}

func TestRegisterSendsConnectedFrame(t *testing.T) {
	s := newTestServer(&fakeSender{}, &fakeGuard{})
	_, conn := connect(s, "cu__42")

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameConnected, frame["type"])
	assert.Equal(t, "cu__42", frame["userId"])
	assert.Equal(t, int64(1), s.GetOnlineConnCount())
}

func TestJoinConversation(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{"cu__42": true}, marked: 3}
	s := newTestServer(&fakeSender{}, guard)
	client, conn := connect(s, "cu__42")

	err := client.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`))
	require.NoError(t, err)

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameJoined, frame["type"])
	assert.Equal(t, float64(9), frame["conversationId"])
	assert.Equal(t, float64(3), frame["markedRead"])
	assert.True(t, s.InRoom(9, "cu__42"))
}

func TestJoinConversationDenied(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{}}
	s := newTestServer(&fakeSender{}, guard)
	client, conn := connect(s, "cu__99")

	err := client.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`))
	require.NoError(t, err)

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, float64(errcode.ErrNotParticipant.Code), frame["code"])
	assert.False(t, s.InRoom(9, "cu__99"))
}

func TestLeaveConversation(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{"cu__42": true}}
	s := newTestServer(&fakeSender{}, guard)
	client, conn := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))
	require.NoError(t, client.handleFrame([]byte(`{"type":"leave_conversation","conversationId":9}`)))

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameLeft, frame["type"])
	assert.False(t, s.InRoom(9, "cu__42"))
}

func TestMalformedFrameGetsErrorFrame(t *testing.T) {
	s := newTestServer(&fakeSender{}, &fakeGuard{})
	client, conn := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{not json`)))

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, float64(errcode.ErrInvalidProtocol.Code), frame["code"])
}

func TestUnknownFrameTypeGetsErrorFrame(t *testing.T) {
	s := newTestServer(&fakeSender{}, &fakeGuard{})
	client, conn := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{"type":"selfdestruct"}`)))

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameError, frame["type"])
}

func TestSendMessageGoesThroughSender(t *testing.T) {
	sender := &fakeSender{}
	s := newTestServer(sender, &fakeGuard{})
	client, conn := connect(s, "cu__42")

	err := client.handleFrame([]byte(`{"type":"send_message","conversationId":9,"content":"hola","messageType":"text","clientMsgId":"c1"}`))
	require.NoError(t, err)

	require.Len(t, sender.reqs, 1)
	assert.Equal(t, int64(9), sender.reqs[0].ConversationId)
	assert.Equal(t, "hola", sender.reqs[0].Content)
	assert.Equal(t, "c1", sender.reqs[0].ClientMsgId)

	// No direct reply: delivery happens via the push path
	assert.Equal(t, FrameConnected, conn.lastFrame(t)["type"])
}

func TestSendMessageFailureReturnsErrorFrame(t *testing.T) {
	sender := &fakeSender{err: errcode.ErrEmptyContent}
	s := newTestServer(sender, &fakeGuard{})
	client, conn := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{"type":"send_message","conversationId":9}`)))

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, float64(errcode.ErrEmptyContent.Code), frame["code"])
}

func TestNewMessageBroadcastIncludesSender(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{"cu__42": true, "pr__7": true}}
	s := newTestServer(&fakeSender{}, guard)
	customer, customerConn := connect(s, "cu__42")
	provider, providerConn := connect(s, "pr__7")

	require.NoError(t, customer.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))
	require.NoError(t, provider.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))

	msg := &entity.Message{Id: 5, ConversationId: 9, Seq: 2, SenderId: "cu__42", MessageType: "text", Content: "hola"}
	s.processPushTask(context.Background(), &PushTask{Msg: msg})

	for _, conn := range []*fakeConn{customerConn, providerConn} {
		frame := conn.lastFrame(t)
		require.Equal(t, FrameNewMessage, frame["type"])
		assert.Equal(t, float64(9), frame["conversationId"])
		payload := frame["message"].(map[string]interface{})
		assert.Equal(t, float64(2), payload["seq"])
		assert.Equal(t, "cu__42", payload["senderId"])
		assert.Equal(t, "hola", payload["content"])
	}
}

func TestTypingExcludesOriginator(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{"cu__42": true, "pr__7": true}}
	s := newTestServer(&fakeSender{}, guard)
	customer, customerConn := connect(s, "cu__42")
	provider, providerConn := connect(s, "pr__7")

	require.NoError(t, customer.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))
	require.NoError(t, provider.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))
	customerBefore := len(customerConn.decoded(t))

	require.NoError(t, customer.handleFrame([]byte(`{"type":"typing","conversationId":9}`)))

	frame := providerConn.lastFrame(t)
	assert.Equal(t, FrameUserTyping, frame["type"])
	assert.Equal(t, "cu__42", frame["userId"])
	assert.Len(t, customerConn.decoded(t), customerBefore)

	require.NoError(t, customer.handleFrame([]byte(`{"type":"stop_typing","conversationId":9}`)))
	assert.Equal(t, FrameUserStoppedTyping, providerConn.lastFrame(t)["type"])
}

func TestTypingRequiresRoomMembership(t *testing.T) {
	s := newTestServer(&fakeSender{}, &fakeGuard{})
	client, conn := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{"type":"typing","conversationId":9}`)))

	frame := conn.lastFrame(t)
	assert.Equal(t, FrameError, frame["type"])
	assert.Equal(t, float64(errcode.ErrNotInRoom.Code), frame["code"])
}

func TestUnregisterDropsRoomMembership(t *testing.T) {
	guard := &fakeGuard{allowed: map[string]bool{"cu__42": true}}
	s := newTestServer(&fakeSender{}, guard)
	client, _ := connect(s, "cu__42")

	require.NoError(t, client.handleFrame([]byte(`{"type":"join_conversation","conversationId":9}`)))
	require.True(t, s.InRoom(9, "cu__42"))

	s.unregisterClient(context.Background(), client)
	assert.False(t, s.InRoom(9, "cu__42"))
	assert.Equal(t, int64(0), s.GetOnlineConnCount())
}
