package rdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// CommunityRow 社区及其派生计数
type CommunityRow struct {
	ID          uint64
	Name        string
	Description string
	CreatorID   uint64
	CreatorName string
	CreatedAt   time.Time
	MemberCount int64
	PostCount   int64
}

// Create 建社区和创建者成员关系在同一个事务里完成
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		mRepo := &CommunityMemberRepository{DB: tx}
		return mRepo.Join(ctx, &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.MemberRoleCreator,
		})
	})
	return errors.Wrap(err, "creating community")
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	if err := r.DB.WithContext(ctx).First(&community, id).Error; err != nil {
		return nil, errors.Wrapf(err, "finding community %d", id)
	}
	return &community, nil
}

// ExistsByName excludeID 非 0 时排除自身，用于改名
func (r *CommunityRepository) ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&model.Community{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, errors.Wrap(err, "counting communities by name")
}

func (r *CommunityRepository) rows(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table("communities AS c").
		Select(`c.id, c.name, c.description, c.creator_id, c.created_at,
			u.username AS creator_name,
			(SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id) AS member_count,
			(SELECT COUNT(*) FROM posts p WHERE p.community_id = c.id) AS post_count`).
		Joins("JOIN users u ON u.id = c.creator_id")
}

func (r *CommunityRepository) FindRow(ctx context.Context, id uint64) (*CommunityRow, error) {
	var rows []CommunityRow
	if err := r.rows(ctx).Where("c.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "loading community %d", id)
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(gorm.ErrRecordNotFound, "loading community %d", id)
	}
	return &rows[0], nil
}

// List 新建的在前
func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]CommunityRow, error) {
	rows := make([]CommunityRow, 0, limit)
	err := r.rows(ctx).
		Order("c.created_at DESC, c.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, errors.Wrap(err, "listing communities")
}

func (r *CommunityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).Count(&count).Error
	return count, errors.Wrap(err, "counting communities")
}

func (r *CommunityRepository) Update(ctx context.Context, c *model.Community, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return errors.Wrapf(r.DB.WithContext(ctx).Model(c).Updates(fields).Error, "updating community %d", c.ID)
}

// Delete 级联删除：帖子的点赞 -> 帖子 -> 成员 -> 社区
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&model.Post{}).Select("id").Where("community_id = ?", id)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Community{}, id).Error
	})
	return errors.Wrapf(err, "deleting community %d", id)
}
