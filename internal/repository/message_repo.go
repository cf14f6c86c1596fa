package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/servicioshogar/chat/internal/entity"
	"gorm.io/gorm"
)

// MessageRepo is the repository for message operations
type MessageRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB, rdb *redis.Client) *MessageRepo {
	return &MessageRepo{db: db, rdb: rdb}
}

// Create creates a new message
func (r *MessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = entity.NowUnixMilli()
	}
	return tx.WithContext(ctx).Create(msg).Error
}

// GetById gets message by id
func (r *MessageRepo) GetById(ctx context.Context, id int64) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByClientMsgId gets message by sender_id and client_msg_id (for idempotency check)
func (r *MessageRepo) GetByClientMsgId(ctx context.Context, senderId, clientMsgId string) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND client_msg_id = ?", senderId, clientMsgId).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// PageMessages pages messages in a conversation, newest first. Page 1
// starts at the latest message; clients render history top-down from
// messages[0].
func (r *MessageRepo) PageMessages(ctx context.Context, conversationId int64, page, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("seq DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MessagesSince gets messages with seq greater than afterSeq, ascending.
// Used by reconnecting clients to catch up on what they missed.
func (r *MessageRepo) MessagesSince(ctx context.Context, conversationId int64, afterSeq int64, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND seq > ?", conversationId, afterSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLatestMessage gets the most recent message in a conversation
func (r *MessageRepo) GetLatestMessage(ctx context.Context, conversationId int64) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("seq DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetLatestMessages gets the most recent message per conversation
func (r *MessageRepo) GetLatestMessages(ctx context.Context, conversationIds []int64) (map[int64]*entity.Message, error) {
	result := make(map[int64]*entity.Message, len(conversationIds))
	if len(conversationIds) == 0 {
		return result, nil
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("(conversation_id, seq) IN (?)",
			r.db.Model(&entity.Message{}).
				Select("conversation_id, MAX(seq)").
				Where("conversation_id IN ?", conversationIds).
				Group("conversation_id")).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		result[msg.ConversationId] = msg
	}
	return result, nil
}

// MarkRead flips is_read on every unread message addressed to readerId,
// i.e. messages in the conversation sent by the other participant
func (r *MessageRepo) MarkRead(ctx context.Context, tx *gorm.DB, conversationId int64, readerId string) (int64, error) {
	now := entity.NowUnixMilli()
	result := tx.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationId, readerId, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}
