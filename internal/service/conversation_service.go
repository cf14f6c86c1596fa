package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/servicioshogar/chat/common"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/internal/repository"
	"github.com/servicioshogar/chat/pkg/errcode"
	"gorm.io/gorm"
)

// ConversationService handles conversation-related business logic
type ConversationService struct {
	convRepo *repository.ConversationRepo
	msgRepo  *repository.MessageRepo
	seqRepo  *repository.SeqRepo
	userRepo *repository.UserRepo
	repos    *repository.Repositories
	msgSvc   *MessageService
}

// NewConversationService creates a new ConversationService
func NewConversationService(repos *repository.Repositories, msgSvc *MessageService) *ConversationService {
	return &ConversationService{
		convRepo: repos.Conversation,
		msgRepo:  repos.Message,
		seqRepo:  repos.Seq,
		userRepo: repos.User,
		repos:    repos,
		msgSvc:   msgSvc,
	}
}

// ListConversations gets all conversations for a user, enriched with the
// counterpart's profile and the latest message
func (s *ConversationService) ListConversations(ctx context.Context, userId string) ([]*entity.ConversationInfo, error) {
	convs, err := s.convRepo.GetUserConversations(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get user conversations failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}
	if len(convs) == 0 {
		return []*entity.ConversationInfo{}, nil
	}

	convIds := make([]int64, 0, len(convs))
	otherIds := make([]string, 0, len(convs))
	for _, conv := range convs {
		convIds = append(convIds, conv.Id)
		if other := conv.CounterpartOf(userId); other != "" {
			otherIds = append(otherIds, other)
		}
	}

	users, err := s.userRepo.GetByIds(ctx, otherIds)
	if err != nil {
		log.CtxWarn(ctx, "get counterpart users failed: %v", err)
	}
	userById := make(map[string]*entity.User, len(users))
	for _, user := range users {
		userById[user.Id] = user
	}

	latest, err := s.msgRepo.GetLatestMessages(ctx, convIds)
	if err != nil {
		log.CtxWarn(ctx, "get latest messages failed: %v", err)
		latest = map[int64]*entity.Message{}
	}

	maxSeqs, err := s.seqRepo.GetMaxSeqs(ctx, convIds)
	if err != nil {
		log.CtxWarn(ctx, "get max seqs failed: %v", err)
		maxSeqs = map[int64]int64{}
	}

	return AssembleConversationInfos(userId, convs, userById, latest, maxSeqs), nil
}

// AssembleConversationInfos builds the list projection from its parts.
// Conversations keep their input order.
func AssembleConversationInfos(userId string, convs []*entity.Conversation, users map[string]*entity.User, latest map[int64]*entity.Message, maxSeqs map[int64]int64) []*entity.ConversationInfo {
	result := make([]*entity.ConversationInfo, 0, len(convs))
	for _, conv := range convs {
		otherId := conv.CounterpartOf(userId)
		info := &entity.ConversationInfo{
			Id:               conv.Id,
			CustomerId:       conv.CustomerId,
			ProviderId:       conv.ProviderId,
			ServiceRequestId: conv.ServiceRequestId,
			OtherUserId:      otherId,
			UnreadCount:      conv.UnreadFor(userId),
			MaxSeq:           maxSeqs[conv.Id],
			LastMessageAt:    conv.LastMessageAt,
			CreatedAt:        conv.CreatedAt,
		}
		if user := users[otherId]; user != nil {
			info.OtherUserName = user.DisplayName
			info.OtherUserAvatar = user.Avatar
		}
		if msg := latest[conv.Id]; msg != nil {
			info.LastMessage = msg.ToMessageInfo()
		}
		result = append(result, info)
	}
	return result
}

// CreateConversationRequest represents create conversation request. The
// provider is addressed by its marketplace account id.
type CreateConversationRequest struct {
	ProviderId       int64  `json:"providerId"`
	ServiceRequestId *int64 `json:"serviceRequestId,omitempty"`
	InitialMessage   string `json:"initialMessage,omitempty"`
}

// CreateConversation finds or creates the conversation between the calling
// customer and a provider, optionally sending an opening message
func (s *ConversationService) CreateConversation(ctx context.Context, callerId string, req *CreateConversationRequest) (*entity.ConversationInfo, error) {
	var caller common.Actor
	if err := caller.FromChatUserId(callerId); err != nil {
		return nil, errcode.ErrInvalidParam
	}
	if caller.Role != common.RoleCustomer {
		return nil, errcode.ErrForbidden
	}
	if req.ProviderId <= 0 {
		return nil, errcode.ErrInvalidParticipant
	}
	if caller.Id == req.ProviderId {
		return nil, errcode.ErrSelfConversation
	}

	provider := common.Actor{Id: req.ProviderId, Role: common.RoleProvider}
	providerId, err := provider.ToChatUserId()
	if err != nil {
		return nil, errcode.ErrInvalidParticipant
	}

	conv, created, err := s.convRepo.GetOrCreate(ctx, callerId, providerId, req.ServiceRequestId)
	if err != nil {
		log.CtxError(ctx, "get or create conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if created {
		log.CtxInfo(ctx, "conversation created: id=%d, customer_id=%s, provider_id=%s", conv.Id, callerId, providerId)
	}

	if req.InitialMessage != "" {
		_, err := s.msgSvc.SendMessage(ctx, callerId, &SendMessageRequest{
			ConversationId: conv.Id,
			Content:        req.InitialMessage,
		})
		if err != nil {
			return nil, err
		}
		// Reload so the projection reflects the opening message
		if fresh, err := s.convRepo.GetById(ctx, conv.Id); err == nil && fresh != nil {
			conv = fresh
		}
	}

	return s.buildInfo(ctx, callerId, conv)
}

// GetConversation gets a single conversation for a participant or admin
func (s *ConversationService) GetConversation(ctx context.Context, userId string, conversationId int64) (*entity.ConversationInfo, error) {
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
	return s.buildInfo(ctx, userId, conv)
}

// buildInfo assembles the projection for a single conversation
func (s *ConversationService) buildInfo(ctx context.Context, userId string, conv *entity.Conversation) (*entity.ConversationInfo, error) {
	users := make(map[string]*entity.User, 1)
	otherId := conv.CounterpartOf(userId)
	if otherId != "" {
		if user, err := s.userRepo.GetById(ctx, otherId); err == nil && user != nil {
			users[otherId] = user
		}
	}

	latest := make(map[int64]*entity.Message, 1)
	if msg, err := s.msgRepo.GetLatestMessage(ctx, conv.Id); err == nil && msg != nil {
		latest[conv.Id] = msg
	}

	maxSeq, err := s.seqRepo.GetMaxSeq(ctx, conv.Id)
	if err != nil {
		log.CtxWarn(ctx, "get max seq failed: %v", err)
		maxSeq = 0
	}

	infos := AssembleConversationInfos(userId, []*entity.Conversation{conv}, users, latest, map[int64]int64{conv.Id: maxSeq})
	return infos[0], nil
}

// MarkConversationRead marks every message addressed to userId as read and
// zeroes their unread counter, returning how many messages were flipped
func (s *ConversationService) MarkConversationRead(ctx context.Context, userId string, conversationId int64) (int64, error) {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		log.CtxError(ctx, "get conversation failed: %v", err)
		return 0, errcode.ErrInternalServer
	}
	if conv == nil {
		return 0, errcode.ErrConvNotFound
	}
	if !conv.IsParticipant(userId) {
		return 0, errcode.ErrNotParticipant
	}

	var marked int64
	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		marked, err = s.msgRepo.MarkRead(ctx, tx, conversationId, userId)
		if err != nil {
			return err
		}
		return s.convRepo.ResetUnread(ctx, tx, conversationId, userId)
	})
	if err != nil {
		log.CtxError(ctx, "mark conversation read failed: %v", err)
		return 0, errcode.ErrInternalServer
	}

	return marked, nil
}

// TotalUnread sums the caller's unread counters across all conversations
func (s *ConversationService) TotalUnread(ctx context.Context, userId string) (int64, error) {
	total, err := s.convRepo.TotalUnread(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get total unread failed: %v", err)
		return 0, errcode.ErrInternalServer
	}
	return total, nil
}

// CanAccess reports whether userId may join the conversation's room
func (s *ConversationService) CanAccess(ctx context.Context, userId string, conversationId int64) (bool, error) {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, nil
	}
	return conv.IsParticipant(userId) || common.IsAdminId(userId), nil
}
