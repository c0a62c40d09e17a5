package model

import "time"

type User struct {
	ID        uint64    `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:150;not null"`
	Password  string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:254;not null;default:''"`
	FirstName string    `gorm:"size:150;not null;default:''"`
	LastName  string    `gorm:"size:150;not null;default:''"`
	CreatedAt time.Time // 注册时间，对外字段 date_joined
	UpdatedAt time.Time
}
