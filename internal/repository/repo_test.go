package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.Conversation{},
		&entity.Message{},
		&entity.ConversationSeq{},
		&entity.User{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedMessage(t *testing.T, repo *MessageRepo, convId, seq int64, senderId, content string, createdAt int64) *entity.Message {
	t.Helper()
	msg := &entity.Message{
		ConversationId: convId,
		Seq:            seq,
		SenderId:       senderId,
		MessageType:    "text",
		Content:        content,
		CreatedAt:      createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), repo.db, msg))
	return msg
}

func TestGetOrCreateConverges(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db, nil)
	ctx := context.Background()

	first, created, err := repo.GetOrCreate(ctx, "cu__42", "pr__7", nil)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, first.Id)

	second, created, err := repo.GetOrCreate(ctx, "cu__42", "pr__7", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Id, second.Id)

	// Different pair gets its own row
	other, created, err := repo.GetOrCreate(ctx, "cu__42", "pr__8", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestPageMessagesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		seedMessage(t, repo, 9, i, "cu__42", fmt.Sprintf("msg %d", i), 1000+i)
	}

	messages, err := repo.PageMessages(ctx, 9, 1, 50)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Latest message leads the page; createdAt never increases down the list
	assert.Equal(t, int64(3), messages[0].Seq)
	for i := 1; i < len(messages); i++ {
		assert.LessOrEqual(t, messages[i].CreatedAt, messages[i-1].CreatedAt)
		assert.Less(t, messages[i].Seq, messages[i-1].Seq)
	}
}

func TestPageMessagesDisjointPages(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		seedMessage(t, repo, 9, i, "cu__42", fmt.Sprintf("msg %d", i), 1000+i)
	}

	seen := make(map[int64]bool)
	var lastSeq int64 = 6
	for page := 1; page <= 3; page++ {
		messages, err := repo.PageMessages(ctx, 9, page, 2)
		require.NoError(t, err)
		for _, msg := range messages {
			assert.False(t, seen[msg.Seq], "seq %d returned twice", msg.Seq)
			assert.Less(t, msg.Seq, lastSeq)
			seen[msg.Seq] = true
			lastSeq = msg.Seq
		}
	}
	assert.Len(t, seen, 5)
}

func TestMessagesSinceAscending(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		seedMessage(t, repo, 9, i, "cu__42", fmt.Sprintf("msg %d", i), 1000+i)
	}

	messages, err := repo.MessagesSince(ctx, 9, 2, 100)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(3), messages[0].Seq)
	assert.Equal(t, int64(4), messages[1].Seq)

	messages, err = repo.MessagesSince(ctx, 9, 4, 100)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMarkReadTargetsCounterpartMessages(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	own := seedMessage(t, repo, 9, 1, "cu__42", "mine", 1001)
	theirs1 := seedMessage(t, repo, 9, 2, "pr__7", "theirs", 1002)
	theirs2 := seedMessage(t, repo, 9, 3, "pr__7", "theirs too", 1003)

	marked, err := repo.MarkRead(ctx, db, 9, "cu__42")
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	for _, id := range []int64{theirs1.Id, theirs2.Id} {
		msg, err := repo.GetById(ctx, id)
		require.NoError(t, err)
		assert.True(t, msg.IsRead)
		require.NotNil(t, msg.ReadAt)
	}

	msg, err := repo.GetById(ctx, own.Id)
	require.NoError(t, err)
	assert.False(t, msg.IsRead, "reader's own message must stay untouched")

	// Already read, nothing left to mark
	marked, err = repo.MarkRead(ctx, db, 9, "cu__42")
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestBumpOnNewMessageIncrementsReceiverOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db, nil)
	ctx := context.Background()

	conv, _, err := repo.GetOrCreate(ctx, "cu__42", "pr__7", nil)
	require.NoError(t, err)

	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv.Id, "cu__42", 2001))
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv.Id, "cu__42", 2002))

	got, err := repo.GetById(ctx, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CustomerUnreadCount)
	assert.Equal(t, int64(2), got.ProviderUnreadCount)
	assert.Equal(t, int64(2002), got.LastMessageAt)

	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv.Id, "pr__7", 2003))

	got, err = repo.GetById(ctx, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CustomerUnreadCount)
	assert.Equal(t, int64(2), got.ProviderUnreadCount)
	assert.Equal(t, int64(2003), got.LastMessageAt)
}

func TestResetUnreadZeroesCallerOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db, nil)
	ctx := context.Background()

	conv, _, err := repo.GetOrCreate(ctx, "cu__42", "pr__7", nil)
	require.NoError(t, err)
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv.Id, "cu__42", 2001))
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv.Id, "pr__7", 2002))

	require.NoError(t, repo.ResetUnread(ctx, db, conv.Id, "cu__42"))

	got, err := repo.GetById(ctx, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CustomerUnreadCount)
	assert.Equal(t, int64(1), got.ProviderUnreadCount, "counterpart counter must survive")
}

func TestTotalUnreadAcrossConversations(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db, nil)
	ctx := context.Background()

	conv1, _, err := repo.GetOrCreate(ctx, "cu__42", "pr__7", nil)
	require.NoError(t, err)
	conv2, _, err := repo.GetOrCreate(ctx, "cu__42", "pr__8", nil)
	require.NoError(t, err)

	// Providers send: customer accumulates unread in both conversations
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv1.Id, "pr__7", 2001))
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv1.Id, "pr__7", 2002))
	require.NoError(t, repo.BumpOnNewMessage(ctx, db, conv2.Id, "pr__8", 2003))

	total, err := repo.TotalUnread(ctx, "cu__42")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	total, err = repo.TotalUnread(ctx, "pr__7")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSyncSeqKeepsWatermark(t *testing.T) {
	db := newTestDB(t)
	repo := NewSeqRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.SyncSeqToMySQLWithTx(ctx, db, 9, 5))
	// A late writer with a stale seq must not move the watermark back
	require.NoError(t, repo.SyncSeqToMySQLWithTx(ctx, db, 9, 3))

	info, err := repo.GetConversationSeqInfo(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.MaxSeq)

	require.NoError(t, repo.SyncSeqToMySQLWithTx(ctx, db, 9, 7))

	seqs, err := repo.GetMaxSeqs(ctx, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, int64(7), seqs[9])
}

func TestGetLatestMessagesPerConversation(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	seedMessage(t, repo, 1, 1, "cu__42", "first", 1001)
	seedMessage(t, repo, 1, 2, "pr__7", "latest in 1", 1002)
	seedMessage(t, repo, 2, 1, "cu__42", "latest in 2", 1003)

	latest, err := repo.GetLatestMessages(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "latest in 1", latest[1].Content)
	assert.Equal(t, "latest in 2", latest[2].Content)
}

func TestGetByClientMsgId(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db, nil)
	ctx := context.Background()

	seeded := seedMessage(t, repo, 9, 1, "cu__42", "hola", 1001)
	seeded.ClientMsgId = "c1"
	require.NoError(t, db.Save(seeded).Error)

	msg, err := repo.GetByClientMsgId(ctx, "cu__42", "c1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, seeded.Id, msg.Id)

	// Same clientMsgId from a different sender is a different message
	msg, err = repo.GetByClientMsgId(ctx, "pr__7", "c1")
	require.NoError(t, err)
	assert.Nil(t, msg)
}
