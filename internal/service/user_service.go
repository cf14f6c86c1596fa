package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/servicioshogar/chat/common"
	"github.com/servicioshogar/chat/internal/entity"
	"github.com/servicioshogar/chat/internal/repository"
	"github.com/servicioshogar/chat/pkg/errcode"
)

// UserService handles chat user profile sync
type UserService struct {
	userRepo *repository.UserRepo
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repository.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpsertProfileRequest represents a profile sync request from the
// marketplace core
type UpsertProfileRequest struct {
	UserId      int64  `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// UpsertProfile creates or refreshes a chat user profile
func (s *UserService) UpsertProfile(ctx context.Context, req *UpsertProfileRequest) (*entity.UserInfo, error) {
	if req.UserId <= 0 || req.DisplayName == "" {
		return nil, errcode.ErrInvalidParam
	}
	role := common.RoleType(req.Role)
	switch role {
	case common.RoleCustomer, common.RoleProvider, common.RoleAdmin:
	default:
		return nil, errcode.ErrInvalidParam
	}

	actor := common.Actor{Id: req.UserId, Role: role}
	chatUserId, err := actor.ToChatUserId()
	if err != nil {
		return nil, errcode.ErrInvalidParam
	}
	user := &entity.User{
		Id:          chatUserId,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
	}
	if req.Extra != "" {
		user.Extra = &req.Extra
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		log.CtxError(ctx, "upsert user failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "user profile synced: id=%s", user.Id)
	return user.ToUserInfo(), nil
}

// GetUserInfo gets user info by id
func (s *UserService) GetUserInfo(ctx context.Context, userId string) (*entity.UserInfo, error) {
	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get user failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}
	return user.ToUserInfo(), nil
}

// GetUserInfos gets multiple users info by ids
func (s *UserService) GetUserInfos(ctx context.Context, userIds []string) ([]*entity.UserInfo, error) {
	users, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		log.CtxError(ctx, "get users failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, user.ToUserInfo())
	}
	return infos, nil
}
