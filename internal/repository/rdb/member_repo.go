package rdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"Community_Feed/internal/model"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// MemberRow 成员列表的一行，带用户名
type MemberRow struct {
	ID          uint64
	CommunityID uint64
	UserID      uint64
	Username    string
	Role        int
	CreatedAt   time.Time
}

// Join 重复加入由唯一索引 uk_community_user 拒绝，返回 gorm.ErrDuplicatedKey
func (r *CommunityMemberRepository) Join(ctx context.Context, member *model.CommunityMember) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(member).Error, "joining community")
}

// Leave 创建者的成员关系 (role=1) 不会被删除
func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ? AND role <> ?", communityID, userID, model.MemberRoleCreator).
		Delete(&model.CommunityMember{})
	return tx.RowsAffected, errors.Wrap(tx.Error, "leaving community")
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "checking membership")
}

// MemberOf 批量判断 userID 属于 communityIDs 中的哪些社区
func (r *CommunityMemberRepository) MemberOf(ctx context.Context, userID uint64, communityIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(communityIDs))
	if userID == 0 || len(communityIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("user_id = ? AND community_id IN ?", userID, communityIDs).
		Pluck("community_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "loading memberships")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListMembers 最近加入的在前
func (r *CommunityMemberRepository) ListMembers(ctx context.Context, communityID uint64) ([]MemberRow, error) {
	rows := make([]MemberRow, 0)
	err := r.DB.WithContext(ctx).Table("community_members AS m").
		Select("m.id, m.community_id, m.user_id, u.username, m.role, m.created_at").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.community_id = ?", communityID).
		Order("m.created_at DESC, m.id DESC").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "listing members")
}
