package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/servicioshogar/chat/internal/service"
	"github.com/servicioshogar/chat/pkg/errcode"
	"github.com/servicioshogar/chat/pkg/response"
)

// UserHandler handles profile sync requests from the marketplace core
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpsertProfile handles internal profile upsert request
func (h *UserHandler) UpsertProfile(ctx context.Context, c *app.RequestContext) {
	var req service.UpsertProfileRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	info, err := h.userService.UpsertProfile(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}
