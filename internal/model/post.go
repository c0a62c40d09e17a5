package model

import "time"

type Post struct {
	ID          uint64    `gorm:"primaryKey"`
	CommunityID uint64    `gorm:"not null;index:idx_community_time,priority:1"`
	AuthorID    uint64    `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index;index:idx_community_time,priority:2,sort:desc"`
	UpdatedAt   time.Time
}
