package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mbeoliero/kit/log"
	"github.com/servicioshogar/chat/pkg/constant"
)

// pushEnvelope wraps a frame for cross-instance delivery. InstanceId
// lets the publishing instance skip its own echo; ExcludeUserId keeps
// typing indicators away from their originator on every instance.
type pushEnvelope struct {
	InstanceId     string          `json:"instanceId"`
	ConversationId int64           `json:"conversationId"`
	ExcludeUserId  string          `json:"excludeUserId,omitempty"`
	Frame          json.RawMessage `json:"frame"`
}

// publishToRoom publishes a frame to the conversation's Redis channel
// so other instances can deliver it to their local room members
func (s *WsServer) publishToRoom(ctx context.Context, conversationId int64, excludeUserId string, frame []byte) {
	if s.rdb == nil {
		return
	}

	env := pushEnvelope{
		InstanceId:     s.instanceId,
		ConversationId: conversationId,
		ExcludeUserId:  excludeUserId,
		Frame:          frame,
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.CtxError(ctx, "marshal push envelope failed: %v", err)
		return
	}

	channel := fmt.Sprintf(constant.RedisKeyRoomChannel(), conversationId)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		log.CtxWarn(ctx, "publish to room channel failed: conversation_id=%d, error=%v", conversationId, err)
	}
}

// runBackplane subscribes to every room channel and replays frames
// published by other instances to local room members
func (s *WsServer) runBackplane(ctx context.Context) {
	pubsub := s.rdb.PSubscribe(ctx, constant.RedisKeyRoomPattern())
	defer pubsub.Close()

	log.Info("room backplane subscribed: pattern=%s", constant.RedisKeyRoomPattern())

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env pushEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.CtxWarn(ctx, "unmarshal push envelope failed: %v", err)
				continue
			}

			// Skip frames this instance published itself
			if env.InstanceId == s.instanceId {
				continue
			}

			s.broadcastLocal(ctx, env.ConversationId, env.ExcludeUserId, env.Frame)
		}
	}
}
