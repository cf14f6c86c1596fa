package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/servicioshogar/chat/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepo is the repository for conversation operations
type ConversationRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewConversationRepo creates a new ConversationRepo
func NewConversationRepo(db *gorm.DB, rdb *redis.Client) *ConversationRepo {
	return &ConversationRepo{db: db, rdb: rdb}
}

// Create creates a new conversation
func (r *ConversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	now := entity.NowUnixMilli()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	return r.db.WithContext(ctx).Create(conv).Error
}

// GetById gets conversation by id
func (r *ConversationRepo) GetById(ctx context.Context, id int64) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetByPair gets the conversation between a customer and a provider
func (r *ConversationRepo) GetByPair(ctx context.Context, customerId, providerId string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND provider_id = ?", customerId, providerId).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetOrCreate returns the conversation for a pair, creating it if absent.
// The insert races safely on idx_conv_pair: concurrent callers converge
// on the same row and created reports whether this call inserted it.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, customerId, providerId string, serviceRequestId *int64) (*entity.Conversation, bool, error) {
	now := entity.NowUnixMilli()
	conv := &entity.Conversation{
		CustomerId:       customerId,
		ProviderId:       providerId,
		ServiceRequestId: serviceRequestId,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "provider_id"}},
		DoNothing: true,
	}).Create(conv)
	if result.Error != nil {
		return nil, false, result.Error
	}

	created := result.RowsAffected > 0
	if created {
		return conv, true, nil
	}

	existing, err := r.GetByPair(ctx, customerId, providerId)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetUserConversations gets all conversations for a user, most recently
// active first
func (r *ConversationRepo) GetUserConversations(ctx context.Context, userId string) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR provider_id = ?", userId, userId).
		Order("last_message_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// BumpOnNewMessage advances last_message_at and increments the receiver's
// unread counter in a single UPDATE so concurrent senders never lose
// increments
func (r *ConversationRepo) BumpOnNewMessage(ctx context.Context, tx *gorm.DB, conversationId int64, senderId string, sentAt int64) error {
	return tx.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ?", conversationId).
		Updates(map[string]interface{}{
			"customer_unread_count": gorm.Expr("customer_unread_count + CASE WHEN customer_id = ? THEN 0 ELSE 1 END", senderId),
			"provider_unread_count": gorm.Expr("provider_unread_count + CASE WHEN provider_id = ? THEN 0 ELSE 1 END", senderId),
			"last_message_at":       sentAt,
			"updated_at":            entity.NowUnixMilli(),
		}).Error
}

// ResetUnread zeroes the unread counter belonging to userId
func (r *ConversationRepo) ResetUnread(ctx context.Context, tx *gorm.DB, conversationId int64, userId string) error {
	return tx.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ?", conversationId).
		Updates(map[string]interface{}{
			"customer_unread_count": gorm.Expr("CASE WHEN customer_id = ? THEN 0 ELSE customer_unread_count END", userId),
			"provider_unread_count": gorm.Expr("CASE WHEN provider_id = ? THEN 0 ELSE provider_unread_count END", userId),
			"updated_at":            entity.NowUnixMilli(),
		}).Error
}

// TotalUnread sums the caller's unread counters across all conversations
func (r *ConversationRepo) TotalUnread(ctx context.Context, userId string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Select(`COALESCE(SUM(
			CASE WHEN customer_id = ? THEN customer_unread_count ELSE 0 END +
			CASE WHEN provider_id = ? THEN provider_unread_count ELSE 0 END
		), 0)`, userId, userId).
		Where("customer_id = ? OR provider_id = ?", userId, userId).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
