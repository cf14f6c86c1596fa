package sdk

import (
	"context"
	"fmt"
)

// CreateConversationRequest represents find-or-create conversation request
type CreateConversationRequest struct {
	ProviderId       int64  `json:"providerId"`
	ServiceRequestId *int64 `json:"serviceRequestId,omitempty"`
	InitialMessage   string `json:"initialMessage,omitempty"`
}

// MarkReadResponse represents mark read response
type MarkReadResponse struct {
	MarkedRead int64 `json:"markedRead"`
}

// TotalUnreadResponse represents the unread badge response
type TotalUnreadResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// ListConversations gets all conversations for the current user
func (c *Client) ListConversations(ctx context.Context) ([]*ConversationInfo, error) {
	var result []*ConversationInfo
	if err := c.get(ctx, "/api/mvp3/messages/conversations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetConversation gets a specific conversation
func (c *Client) GetConversation(ctx context.Context, conversationId int64) (*ConversationInfo, error) {
	var result ConversationInfo
	path := fmt.Sprintf("/api/mvp3/messages/conversations/%d", conversationId)
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateConversation finds or creates the conversation with a provider
func (c *Client) CreateConversation(ctx context.Context, req *CreateConversationRequest) (*ConversationInfo, error) {
	var result ConversationInfo
	if err := c.post(ctx, "/api/mvp3/messages/conversations", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkRead marks every message addressed to the caller as read
func (c *Client) MarkRead(ctx context.Context, conversationId int64) (int64, error) {
	var result MarkReadResponse
	path := fmt.Sprintf("/api/mvp3/messages/conversations/%d/read", conversationId)
	if err := c.post(ctx, path, nil, &result); err != nil {
		return 0, err
	}
	return result.MarkedRead, nil
}

// TotalUnread gets the caller's unread badge across all conversations
func (c *Client) TotalUnread(ctx context.Context) (int64, error) {
	var result TotalUnreadResponse
	if err := c.get(ctx, "/api/mvp3/messages/unread", nil, &result); err != nil {
		return 0, err
	}
	return result.UnreadCount, nil
}
