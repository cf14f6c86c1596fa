package entity

// ConversationSeq persists the per-conversation sequence watermark so the
// Redis counter can be rebuilt after a flush or failover.
type ConversationSeq struct {
	ConversationId int64 `json:"conversationId" gorm:"column:conversation_id;primaryKey"`
	MaxSeq         int64 `json:"maxSeq" gorm:"column:max_seq"`
	MinSeq         int64 `json:"minSeq" gorm:"column:min_seq"`
	UpdatedAt      int64 `json:"updatedAt" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for ConversationSeq
func (ConversationSeq) TableName() string {
	return "conversation_seqs"
}
