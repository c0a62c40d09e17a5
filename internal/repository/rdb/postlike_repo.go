package rdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Community_Feed/internal/model"
)

type PostLikeRepository struct {
	DB *gorm.DB
}

// LikeRow 点赞列表的一行，带用户名
type LikeRow struct {
	ID        uint64
	UserID    uint64
	Username  string
	PostID    uint64
	CreatedAt time.Time
}

const toggleAttempts = 3

var ErrToggleContended = errors.New("like toggle kept racing")

// Toggle 在一个事务里切换 (user, post) 的点赞状态，返回切换后的状态和点赞数。
// 先按唯一索引 uk_user_post 做 ON CONFLICT DO NOTHING 插入：插入成功即为点赞；
// 没插入说明已经点过，转为删除。删除 0 行说明行已被并发请求删掉，回到插入重试。
func (r *PostLikeRepository) Toggle(ctx context.Context, userID, postID uint64) (liked bool, count int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for range toggleAttempts {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).Create(&model.PostLike{UserID: userID, PostID: postID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				liked = true
				return tx.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
			}

			res = tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.PostLike{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				liked = false
				return tx.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
			}
		}
		return ErrToggleContended
	})
	if err != nil {
		return false, 0, errors.Wrapf(err, "toggling like on post %d", postID)
	}
	return liked, count, nil
}

func (r *PostLikeRepository) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "checking like")
}

// LikedAmong 批量判断 userID 点赞过 postIDs 中的哪些帖子
func (r *PostLikeRepository) LikedAmong(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "loading likes")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListByPost 最新的点赞在前
func (r *PostLikeRepository) ListByPost(ctx context.Context, postID uint64) ([]LikeRow, error) {
	rows := make([]LikeRow, 0)
	err := r.DB.WithContext(ctx).Table("post_likes AS l").
		Select("l.id, l.user_id, u.username, l.post_id, l.created_at").
		Joins("JOIN users u ON u.id = l.user_id").
		Where("l.post_id = ?", postID).
		Order("l.created_at DESC, l.id DESC").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "listing likes")
}
