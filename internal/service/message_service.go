package service

import (
	"context"
	"strings"

	"github.com/mbeoliero/kit/log"
	"github.com/servicioshogar/chat/common"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/internal/repository"
	"github.com/servicioshogar/chat/pkg/constant"
	"github.com/servicioshogar/chat/pkg/errcode"
	"github.com/servicioshogar/chat/pkg/idgen"
	"gorm.io/gorm"
)

// MessagePusher interface for pushing messages to connected clients
type MessagePusher interface {
	AsyncPush(msg *entity.Message)
}

// MessageService handles message-related business logic
type MessageService struct {
	msgRepo  *repository.MessageRepo
	seqRepo  *repository.SeqRepo
	convRepo *repository.ConversationRepo
	userRepo *repository.UserRepo
	repos    *repository.Repositories
	pusher   MessagePusher
}

// NewMessageService creates a new MessageService
func NewMessageService(repos *repository.Repositories) *MessageService {
	return &MessageService{
		msgRepo:  repos.Message,
		seqRepo:  repos.Seq,
		convRepo: repos.Conversation,
		userRepo: repos.User,
		repos:    repos,
	}
}

// SetPusher sets the message pusher
func (s *MessageService) SetPusher(pusher MessagePusher) {
	s.pusher = pusher
}

// SendMessageRequest represents send message request
type SendMessageRequest struct {
	ConversationId int64  `json:"conversationId"`
	ClientMsgId    string `json:"clientMsgId,omitempty"`
	MessageType    string `json:"messageType"`
	Content        string `json:"content"`
}

// ValidateSendRequest normalizes and validates a send request payload.
// An empty messageType defaults to text.
func ValidateSendRequest(req *SendMessageRequest) *errcode.Error {
	if req.ConversationId <= 0 {
		return errcode.ErrInvalidParam
	}
	if req.MessageType == "" {
		req.MessageType = constant.MsgTypeText
	}
	if !constant.ValidMsgType(req.MessageType) {
		return errcode.ErrBadMessageType
	}
	if strings.TrimSpace(req.Content) == "" {
		return errcode.ErrEmptyContent
	}
	if len(req.Content) > constant.MaxContentLength {
		return errcode.ErrContentTooLong
	}
	return nil
}

// SendMessage persists a message, advances the conversation and pushes it
// to connected participants. The seq is assigned before any broadcast so
// every delivery path observes the same ordering.
func (s *MessageService) SendMessage(ctx context.Context, senderId string, req *SendMessageRequest) (*entity.Message, error) {
	if e := ValidateSendRequest(req); e != nil {
		return nil, e
	}

	conv, err := s.convRepo.GetById(ctx, req.ConversationId)
	if err != nil {
		log.CtxError(ctx, "get conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	if !conv.IsParticipant(senderId) {
		return nil, errcode.ErrNotParticipant
	}

	// Check for idempotency
	if req.ClientMsgId != "" {
		existingMsg, err := s.msgRepo.GetByClientMsgId(ctx, senderId, req.ClientMsgId)
		if err != nil {
			log.CtxError(ctx, "check idempotency failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		if existingMsg != nil {
			// Return existing message (idempotent response)
			log.CtxDebug(ctx, "duplicate message: client_msg_id=%s", req.ClientMsgId)
			return existingMsg, nil
		}
	} else {
		clientMsgId, err := idgen.NextID()
		if err != nil {
			log.CtxError(ctx, "generate client_msg_id failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		req.ClientMsgId = clientMsgId
	}

	now := entity.NowUnixMilli()

	var msg *entity.Message

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		// Allocate seq
		seq, err := s.seqRepo.AllocSeq(ctx, conv.Id)
		if err != nil {
			return errcode.ErrSeqAllocFailed.Wrap(err)
		}

		// Create message
		msg = &entity.Message{
			ConversationId: conv.Id,
			Seq:            seq,
			ClientMsgId:    req.ClientMsgId,
			SenderId:       senderId,
			MessageType:    req.MessageType,
			Content:        req.Content,
			CreatedAt:      now,
		}

		if err := s.msgRepo.Create(ctx, tx, msg); err != nil {
			return err
		}

		// Sync seq to MySQL
		if err := s.seqRepo.SyncSeqToMySQLWithTx(ctx, tx, conv.Id, seq); err != nil {
			return err
		}

		// Bump receiver's unread counter and conversation recency
		return s.convRepo.BumpOnNewMessage(ctx, tx, conv.Id, senderId, now)
	})

	if err != nil {
		if e, ok := err.(*errcode.Error); ok {
			return nil, e
		}
		log.CtxError(ctx, "send message failed: %v", err)
		return nil, errcode.ErrSendFailed
	}

	// Async push to both participants (sender gets the echo with the
	// authoritative seq and id)
	if s.pusher != nil {
		s.pusher.AsyncPush(msg)
	}

	log.CtxInfo(ctx, "message sent: sender_id=%s, conversation_id=%d, seq=%d", senderId, conv.Id, msg.Seq)
	return msg, nil
}

// PageMessagesRequest represents page messages request
type PageMessagesRequest struct {
	ConversationId int64 `json:"conversationId"`
	Page           int   `json:"page"`
	Limit          int   `json:"limit"`
}

// PageMessages pages a conversation's history for a participant. Admins
// may read any conversation.
func (s *MessageService) PageMessages(ctx context.Context, userId string, req *PageMessagesRequest) ([]*entity.MessageInfo, int64, error) {
	conv, err := s.authorize(ctx, userId, req.ConversationId)
	if err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = constant.DefaultPageLimit
	}
	if limit > constant.MaxPageLimit {
		limit = constant.MaxPageLimit
	}

	messages, err := s.msgRepo.PageMessages(ctx, conv.Id, req.Page, limit)
	if err != nil {
		log.CtxError(ctx, "page messages failed: %v", err)
		return nil, 0, errcode.ErrInternalServer
	}

	maxSeq, err := s.seqRepo.GetMaxSeq(ctx, conv.Id)
	if err != nil {
		log.CtxWarn(ctx, "get max seq failed: %v", err)
		maxSeq = 0
	}

	infos, err := s.enrichMessages(ctx, messages)
	if err != nil {
		return nil, 0, err
	}
	return infos, maxSeq, nil
}

// MessagesSince returns messages with seq greater than afterSeq, used by
// clients to catch up after a reconnect
func (s *MessageService) MessagesSince(ctx context.Context, userId string, conversationId, afterSeq int64, limit int) ([]*entity.MessageInfo, int64, error) {
	conv, err := s.authorize(ctx, userId, conversationId)
	if err != nil {
		return nil, 0, err
	}

	messages, err := s.msgRepo.MessagesSince(ctx, conv.Id, afterSeq, limit)
	if err != nil {
		log.CtxError(ctx, "get messages since seq failed: %v", err)
		return nil, 0, errcode.ErrInternalServer
	}

	maxSeq, err := s.seqRepo.GetMaxSeq(ctx, conv.Id)
	if err != nil {
		log.CtxWarn(ctx, "get max seq failed: %v", err)
		maxSeq = 0
	}

	infos, err := s.enrichMessages(ctx, messages)
	if err != nil {
		return nil, 0, err
	}
	return infos, maxSeq, nil
}

// authorize loads the conversation and verifies read access
func (s *MessageService) authorize(ctx context.Context, userId string, conversationId int64) (*entity.Conversation, error) {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		log.CtxError(ctx, "get conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	if !conv.IsParticipant(userId) && !common.IsAdminId(userId) {
		return nil, errcode.ErrNoPermission
	}
	return conv, nil
}

// enrichMessages attaches sender display names
func (s *MessageService) enrichMessages(ctx context.Context, messages []*entity.Message) ([]*entity.MessageInfo, error) {
	senderIds := make([]string, 0, 2)
	seen := make(map[string]bool, 2)
	for _, msg := range messages {
		if !seen[msg.SenderId] {
			seen[msg.SenderId] = true
			senderIds = append(senderIds, msg.SenderId)
		}
	}

	names := make(map[string]string, len(senderIds))
	if len(senderIds) > 0 {
		users, err := s.userRepo.GetByIds(ctx, senderIds)
		if err != nil {
			log.CtxWarn(ctx, "get senders failed: %v", err)
		} else {
			for _, user := range users {
				names[user.Id] = user.DisplayName
			}
		}
	}

	return AssembleMessageInfos(messages, names), nil
}

// AssembleMessageInfos converts messages to wire projections, filling in
// sender names from the given map when present
func AssembleMessageInfos(messages []*entity.Message, senderNames map[string]string) []*entity.MessageInfo {
	infos := make([]*entity.MessageInfo, 0, len(messages))
	for _, msg := range messages {
		info := msg.ToMessageInfo()
		info.SenderName = senderNames[msg.SenderId]
		infos = append(infos, info)
	}
	return infos
}
