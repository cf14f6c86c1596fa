package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/pkg/constant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeqRepo is the repository for sequence operations
type SeqRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewSeqRepo creates a new SeqRepo
func NewSeqRepo(db *gorm.DB, rdb *redis.Client) *SeqRepo {
	return &SeqRepo{db: db, rdb: rdb}
}

// AllocSeq allocates a new sequence number for a conversation using Redis INCR
func (r *SeqRepo) AllocSeq(ctx context.Context, conversationId int64) (int64, error) {
	key := fmt.Sprintf(constant.RedisKeySeqConversation(), conversationId)
	seq, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// GetMaxSeq gets the current max sequence for a conversation
func (r *SeqRepo) GetMaxSeq(ctx context.Context, conversationId int64) (int64, error) {
	// Try Redis first
	key := fmt.Sprintf(constant.RedisKeySeqConversation(), conversationId)
	seq, err := r.rdb.Get(ctx, key).Int64()
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, err
	}

	// Fall back to MySQL
	var seqConv entity.ConversationSeq
	err = r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).First(&seqConv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	// Restore to Redis
	r.rdb.Set(ctx, key, seqConv.MaxSeq, 0)

	return seqConv.MaxSeq, nil
}

// SyncSeqToMySQLWithTx syncs the Redis sequence to MySQL within a transaction
func (r *SeqRepo) SyncSeqToMySQLWithTx(ctx context.Context, tx *gorm.DB, conversationId int64, maxSeq int64) error {
	seqConv := &entity.ConversationSeq{
		ConversationId: conversationId,
		MaxSeq:         maxSeq,
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"max_seq": gorm.Expr("CASE WHEN max_seq > ? THEN max_seq ELSE ? END", maxSeq, maxSeq),
		}),
	}).Create(seqConv).Error
}

// InitSeqFromMySQL initializes Redis seq from MySQL after a Redis flush
func (r *SeqRepo) InitSeqFromMySQL(ctx context.Context, conversationId int64) error {
	var seqConv entity.ConversationSeq
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).First(&seqConv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	key := fmt.Sprintf(constant.RedisKeySeqConversation(), conversationId)
	return r.rdb.Set(ctx, key, seqConv.MaxSeq, 0).Err()
}

// GetConversationSeqInfo gets sequence info for a conversation
func (r *SeqRepo) GetConversationSeqInfo(ctx context.Context, conversationId int64) (*entity.ConversationSeq, error) {
	var seqConv entity.ConversationSeq
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).First(&seqConv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.ConversationSeq{ConversationId: conversationId}, nil
		}
		return nil, err
	}
	return &seqConv, nil
}

// GetMaxSeqs gets the persisted max seq for multiple conversations
func (r *SeqRepo) GetMaxSeqs(ctx context.Context, conversationIds []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(conversationIds))
	if len(conversationIds) == 0 {
		return result, nil
	}

	var seqConvs []entity.ConversationSeq
	err := r.db.WithContext(ctx).Where("conversation_id IN ?", conversationIds).Find(&seqConvs).Error
	if err != nil {
		return nil, err
	}

	for _, sc := range seqConvs {
		result[sc.ConversationId] = sc.MaxSeq
	}
	return result, nil
}

// EnsureExists ensures a conversation_seqs record exists
func (r *SeqRepo) EnsureExists(ctx context.Context, tx *gorm.DB, conversationId int64) error {
	seqConv := &entity.ConversationSeq{
		ConversationId: conversationId,
		MaxSeq:         0,
		MinSeq:         0,
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}},
		DoNothing: true,
	}).Create(seqConv).Error
}
