package rdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

// PostRow 帖子及作者、社区名和点赞数
type PostRow struct {
	ID              uint64
	Content         string
	CreatedAt       time.Time
	AuthorID        uint64
	AuthorUsername  string
	AuthorFirstName string
	AuthorLastName  string
	CommunityID     uint64
	CommunityName   string
	LikeCount       int64
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(post).Error, "creating post")
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	if err := r.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, errors.Wrapf(err, "finding post %d", id)
	}
	return &post, nil
}

func (r *PostRepository) rows(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table("posts AS p").
		Select(`p.id, p.content, p.created_at, p.author_id, p.community_id,
			u.username AS author_username, u.first_name AS author_first_name, u.last_name AS author_last_name,
			c.name AS community_name,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count`).
		Joins("JOIN users u ON u.id = p.author_id").
		Joins("JOIN communities c ON c.id = p.community_id")
}

func (r *PostRepository) FindRow(ctx context.Context, id uint64) (*PostRow, error) {
	var rows []PostRow
	if err := r.rows(ctx).Where("p.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "loading post %d", id)
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(gorm.ErrRecordNotFound, "loading post %d", id)
	}
	return &rows[0], nil
}

// List communityID 为 0 时不过滤社区；新帖在前
func (r *PostRepository) List(ctx context.Context, communityID uint64, offset, limit int) ([]PostRow, error) {
	rows := make([]PostRow, 0, limit)
	q := r.rows(ctx)
	if communityID != 0 {
		q = q.Where("p.community_id = ?", communityID)
	}
	err := q.Order("p.created_at DESC, p.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, errors.Wrap(err, "listing posts")
}

func (r *PostRepository) Count(ctx context.Context, communityID uint64) (int64, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&model.Post{})
	if communityID != 0 {
		q = q.Where("community_id = ?", communityID)
	}
	err := q.Count(&count).Error
	return count, errors.Wrap(err, "counting posts")
}

func (r *PostRepository) UpdateContent(ctx context.Context, post *model.Post, content string) error {
	return errors.Wrapf(r.DB.WithContext(ctx).Model(post).Update("content", content).Error, "updating post %d", post.ID)
}

// Delete 硬删除，先删点赞
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
	return errors.Wrapf(err, "deleting post %d", id)
}
