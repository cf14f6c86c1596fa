package sdk

import (
	"context"
)

// UpsertProfileRequest mirrors the internal profile sync payload. Role
// must be one of customer, provider or admin.
type UpsertProfileRequest struct {
	UserId      int64  `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// UpsertProfile creates or updates a chat profile. This hits the
// /internal surface and requires the client to be configured with
// WithInternalToken.
func (c *Client) UpsertProfile(ctx context.Context, req *UpsertProfileRequest) (*UserInfo, error) {
	var result UserInfo
	if err := c.put(ctx, "/internal/users", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
