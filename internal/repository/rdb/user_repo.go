package rdb

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(user).Error, "creating user")
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, errors.Wrapf(err, "finding user %q", username)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, errors.Wrapf(err, "finding user %d", id)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "counting users by username")
}

// UpdateProfile 只更新传入的列
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return errors.Wrapf(r.DB.WithContext(ctx).Model(user).Updates(fields).Error, "updating user %d", user.ID)
}
