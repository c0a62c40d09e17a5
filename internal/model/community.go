package model

import "time"

const (
	MemberRoleMember  = 0
	MemberRoleCreator = 1 // 创建者成员关系不可删除
)

type Community struct {
	ID          uint64    `gorm:"primaryKey"`
	Name        string    `gorm:"uniqueIndex;size:200;not null"`
	Description string    `gorm:"type:text;not null"`
	CreatorID   uint64    `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        int       `gorm:"not null;default:0"` // 0=member, 1=creator
	CreatedAt   time.Time `gorm:"index"`              // joined_at
	UpdatedAt   time.Time
}
