package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/servicioshogar/chat/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepo is the repository for chat user profiles
type UserRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(db *gorm.DB, rdb *redis.Client) *UserRepo {
	return &UserRepo{db: db, rdb: rdb}
}

// Upsert creates a user or refreshes its profile fields
func (r *UserRepo) Upsert(ctx context.Context, user *entity.User) error {
	now := entity.NowUnixMilli()
	user.UpdatedAt = now
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"display_name": user.DisplayName,
			"avatar":       user.Avatar,
			"updated_at":   now,
		}),
	}).Create(user).Error
}

// GetById gets user by id
func (r *UserRepo) GetById(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIds gets users by ids
func (r *UserRepo) GetByIds(ctx context.Context, ids []string) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Exists checks if user exists
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
