package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
	"github.com/servicioshogar/chat/internal/config"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/internal/service"
)

// MessageSender persists and fans out messages sent over the socket
type MessageSender interface {
	SendMessage(ctx context.Context, senderId string, req *service.SendMessageRequest) (*entity.Message, error)
}

// ConversationGuard answers room access questions and read marking
type ConversationGuard interface {
	CanAccess(ctx context.Context, userId string, conversationId int64) (bool, error)
	MarkConversationRead(ctx context.Context, userId string, conversationId int64) (int64, error)
}

// WsServer is the WebSocket server
type WsServer struct {
	upgrader       *websocket.Upgrader
	cfg            *config.Config
	rdb            *redis.Client
	userMap        *UserMap
	roomMap        *RoomMap
	registerChan   chan *Client
	unregisterChan chan *Client
	pushChan       chan *PushTask
	sender         MessageSender
	guard          ConversationGuard
	instanceId     string
	onlineUserNum  atomic.Int64
	onlineConnNum  atomic.Int64
	maxConnNum     int64
}

// PushTask represents a message push task
type PushTask struct {
	Msg *entity.Message
}

// NewWsServer creates a new WebSocket server
func NewWsServer(cfg *config.Config, rdb *redis.Client, sender MessageSender, guard ConversationGuard) *WsServer {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return OriginAllowed(r.Header.Get("Origin"), cfg.Server.AllowedOrigins)
		},
	}

	server := &WsServer{
		upgrader:       upgrader,
		cfg:            cfg,
		rdb:            rdb,
		userMap:        NewUserMap(rdb),
		roomMap:        NewRoomMap(),
		registerChan:   make(chan *Client, 1000),
		unregisterChan: make(chan *Client, 1000),
		pushChan:       make(chan *PushTask, cfg.WebSocket.PushChannelSize),
		sender:         sender,
		guard:          guard,
		instanceId:     uuid.New().String(),
		maxConnNum:     cfg.WebSocket.MaxConnNum,
	}

	return server
}

// OriginAllowed reports whether an Origin header value is acceptable.
// Requests without an Origin header (non-browser clients) are allowed.
// An empty allow list rejects all cross-origin requests; a "*" entry
// allows everything.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// Run starts the WebSocket server
func (s *WsServer) Run(ctx context.Context) {
	// Start event loop
	go s.eventLoop(ctx)
	// Start push workers
	workerNum := s.cfg.WebSocket.PushWorkerNum
	if workerNum <= 0 {
		workerNum = 10
	}
	for i := 0; i < workerNum; i++ {
		go s.pushLoop(ctx)
	}
	// Start cross-instance fan-out
	if s.rdb != nil {
		go s.runBackplane(ctx)
	}
	log.Info("started %d push workers, instance_id=%s", workerNum, s.instanceId)
}

// eventLoop handles client registration and unregistration
func (s *WsServer) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-s.registerChan:
			s.registerClient(ctx, client)
		case client := <-s.unregisterChan:
			s.unregisterClient(ctx, client)
		}
	}
}

// pushLoop handles async message pushing
func (s *WsServer) pushLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.pushChan:
			s.processPushTask(ctx, task)
		}
	}
}

// processPushTask broadcasts a new message to its conversation room.
// Every member gets the frame, the sender included: the echo carries
// the authoritative id and seq.
func (s *WsServer) processPushTask(ctx context.Context, task *PushTask) {
	frame := &NewMessageFrame{
		Type:           FrameNewMessage,
		ConversationId: task.Msg.ConversationId,
		Message:        task.Msg.ToMessageInfo(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.CtxError(ctx, "marshal push frame failed: %v", err)
		return
	}

	s.broadcastLocal(ctx, task.Msg.ConversationId, "", data)
	s.publishToRoom(ctx, task.Msg.ConversationId, "", data)
}

// broadcastLocal writes frame bytes to every room member connected to
// this instance, skipping excludeUserId
func (s *WsServer) broadcastLocal(ctx context.Context, conversationId int64, excludeUserId string, data []byte) {
	for _, userId := range s.roomMap.Members(conversationId) {
		if excludeUserId != "" && userId == excludeUserId {
			continue
		}

		clients, ok := s.userMap.GetAll(userId)
		if !ok {
			continue
		}
		for _, client := range clients {
			if err := client.WriteRaw(data); err != nil {
				log.CtxDebug(ctx, "push to client failed: user_id=%s, conn_id=%s, error=%v", userId, client.ConnId, err)
			}
		}
	}
}

// BroadcastTyping relays a typing indicator to the other room members
func (s *WsServer) BroadcastTyping(conversationId int64, userId string, typing bool) {
	frameType := FrameUserTyping
	if !typing {
		frameType = FrameUserStoppedTyping
	}
	frame := &TypingFrame{
		Type:           frameType,
		ConversationId: conversationId,
		UserId:         userId,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	ctx := context.Background()
	s.broadcastLocal(ctx, conversationId, userId, data)
	s.publishToRoom(ctx, conversationId, userId, data)
}

// JoinRoom adds a user to a conversation room
func (s *WsServer) JoinRoom(conversationId int64, userId string) {
	s.roomMap.Join(conversationId, userId)
}

// LeaveRoom removes a user from a conversation room
func (s *WsServer) LeaveRoom(conversationId int64, userId string) {
	s.roomMap.Leave(conversationId, userId)
}

// InRoom reports whether a user is in a conversation room
func (s *WsServer) InRoom(conversationId int64, userId string) bool {
	return s.roomMap.Contains(conversationId, userId)
}

// registerClient registers a client
func (s *WsServer) registerClient(ctx context.Context, client *Client) {
	existingClients, exists := s.userMap.GetAll(client.UserId)
	if !exists {
		s.onlineUserNum.Add(1)
	}

	s.userMap.Register(ctx, client)
	s.onlineConnNum.Add(1)

	log.CtxInfo(ctx, "client registered: user_id=%s, conn_id=%s, existing_conns=%d, online_users=%d, online_conns=%d",
		client.UserId, client.ConnId, len(existingClients), s.onlineUserNum.Load(), s.onlineConnNum.Load())

	connected := &ConnectedFrame{
		Type:   FrameConnected,
		UserId: client.UserId,
		ConnId: client.ConnId,
	}
	if data, err := json.Marshal(connected); err == nil {
		if err := client.WriteRaw(data); err != nil {
			log.CtxDebug(ctx, "write connected frame failed: user_id=%s, error=%v", client.UserId, err)
		}
	}
}

// unregisterClient unregisters a client
func (s *WsServer) unregisterClient(ctx context.Context, client *Client) {
	isUserOffline := s.userMap.Unregister(ctx, client)
	s.onlineConnNum.Add(-1)

	if isUserOffline {
		s.onlineUserNum.Add(-1)
		// Last socket gone, drop room membership
		left := s.roomMap.RemoveUser(client.UserId)
		if len(left) > 0 {
			log.CtxDebug(ctx, "user removed from rooms: user_id=%s, rooms=%v", client.UserId, left)
		}
	}

	log.CtxInfo(ctx, "client unregistered: user_id=%s, conn_id=%s, user_offline=%v, online_users=%d, online_conns=%d",
		client.UserId, client.ConnId, isUserOffline, s.onlineUserNum.Load(), s.onlineConnNum.Load())
}

// UnregisterClient queues client for unregistration
func (s *WsServer) UnregisterClient(client *Client) {
	select {
	case s.unregisterChan <- client:
	default:
		log.Warn("unregister channel full: user_id=%s", client.UserId)
	}
}

// HandleConnection handles a new WebSocket connection over net/http
func (s *WsServer) HandleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	// Check connection limit
	if s.onlineConnNum.Load() >= s.maxConnNum {
		http.Error(w, "connection limit exceeded", http.StatusServiceUnavailable)
		return
	}

	token := r.URL.Query().Get(QueryToken)
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	claims, err := s.authenticate(token)
	if err != nil {
		log.CtxDebug(ctx, "token validation failed: %v", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Upgrade connection
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}

	// Create client
	connId := uuid.New().String()
	wsConn := NewWebSocketClientConn(conn, s.cfg.WebSocket.MaxMessageSize, PongWait, PingPeriod)
	client := NewClient(wsConn, claims.UserId, token, connId, s)

	// Register client
	s.registerChan <- client

	// Start client
	client.Start()
}

// AsyncPush queues a message for room broadcast. Implements
// service.MessagePusher.
func (s *WsServer) AsyncPush(msg *entity.Message) {
	task := &PushTask{Msg: msg}

	select {
	case s.pushChan <- task:
		// Successfully queued
	default:
		// Queue full, log warning
		log.Warn("push channel full, message dropped: conversation_id=%d, seq=%d", msg.ConversationId, msg.Seq)
	}
}

// GetOnlineUserCount returns online user count
func (s *WsServer) GetOnlineUserCount() int64 {
	return s.onlineUserNum.Load()
}

// GetOnlineConnCount returns online connection count
func (s *WsServer) GetOnlineConnCount() int64 {
	return s.onlineConnNum.Load()
}
