package sdk

import (
	"context"
	"fmt"
	"strconv"
)

// SendMessageRequest represents send message request
type SendMessageRequest struct {
	ClientMsgId string `json:"clientMsgId,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	Content     string `json:"content"`
}

// Message types
const (
	MsgTypeText  = "text"
	MsgTypeImage = "image"
	MsgTypeFile  = "file"
)

// SendMessage sends a message into a conversation over HTTP
func (c *Client) SendMessage(ctx context.Context, conversationId int64, req *SendMessageRequest) (*MessageInfo, error) {
	var result MessageInfo
	path := fmt.Sprintf("/api/mvp3/messages/conversations/%d/messages", conversationId)
	if err := c.post(ctx, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendTextMessage is a convenience method to send a text message
func (c *Client) SendTextMessage(ctx context.Context, conversationId int64, clientMsgId, text string) (*MessageInfo, error) {
	return c.SendMessage(ctx, conversationId, &SendMessageRequest{
		ClientMsgId: clientMsgId,
		MessageType: MsgTypeText,
		Content:     text,
	})
}

// PageMessages pages a conversation's history, newest page first
func (c *Client) PageMessages(ctx context.Context, conversationId int64, page, limit int) (*MessagePage, error) {
	params := map[string]string{}
	if page > 0 {
		params["page"] = strconv.Itoa(page)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var result MessagePage
	path := fmt.Sprintf("/api/mvp3/messages/conversations/%d/messages", conversationId)
	if err := c.get(ctx, path, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MessagesSince gets messages with seq greater than afterSeq, used to
// catch up after a reconnect
func (c *Client) MessagesSince(ctx context.Context, conversationId, afterSeq int64, limit int) (*MessagePage, error) {
	params := map[string]string{
		"seq": strconv.FormatInt(afterSeq, 10),
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var result MessagePage
	path := fmt.Sprintf("/api/mvp3/messages/conversations/%d/messages/since", conversationId)
	if err := c.get(ctx, path, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
