package model

import "time"

// PostLike 唯一索引 (user_id, post_id) 保证一人一帖最多一个赞
type PostLike struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_user_post"`
	PostID    uint64    `gorm:"not null;uniqueIndex:uk_user_post;index:idx_post_time,priority:1"`
	CreatedAt time.Time `gorm:"index:idx_post_time,priority:2,sort:desc"`
	UpdatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}
