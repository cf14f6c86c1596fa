package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{
		Id:         1,
		CustomerId: "cu__42",
		ProviderId: "pr__7",
	}

	assert.True(t, conv.IsParticipant("cu__42"))
	assert.True(t, conv.IsParticipant("pr__7"))
	assert.False(t, conv.IsParticipant("cu__43"))
	assert.False(t, conv.IsParticipant(""))

	assert.Equal(t, "pr__7", conv.CounterpartOf("cu__42"))
	assert.Equal(t, "cu__42", conv.CounterpartOf("pr__7"))
	assert.Equal(t, "", conv.CounterpartOf("ad__1"))
}

func TestConversationUnreadFor(t *testing.T) {
	conv := &Conversation{
		CustomerId:          "cu__42",
		ProviderId:          "pr__7",
		CustomerUnreadCount: 3,
		ProviderUnreadCount: 5,
	}

	assert.Equal(t, int64(3), conv.UnreadFor("cu__42"))
	assert.Equal(t, int64(5), conv.UnreadFor("pr__7"))
	assert.Equal(t, int64(0), conv.UnreadFor("cu__99"))
}

func TestMessageToMessageInfo(t *testing.T) {
	readAt := int64(1700000001000)
	msg := &Message{
		Id:             10,
		ConversationId: 1,
		Seq:            4,
		ClientMsgId:    "client-1",
		SenderId:       "cu__42",
		MessageType:    "text",
		Content:        "hola",
		IsRead:         true,
		ReadAt:         &readAt,
		CreatedAt:      1700000000000,
	}

	info := msg.ToMessageInfo()
	assert.Equal(t, msg.Id, info.Id)
	assert.Equal(t, msg.ConversationId, info.ConversationId)
	assert.Equal(t, msg.Seq, info.Seq)
	assert.Equal(t, msg.ClientMsgId, info.ClientMsgId)
	assert.Equal(t, msg.SenderId, info.SenderId)
	assert.Equal(t, msg.Content, info.Content)
	assert.True(t, info.IsRead)
	assert.Equal(t, &readAt, info.ReadAt)
	assert.Empty(t, info.SenderName)
}
