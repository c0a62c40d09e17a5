package handler

import (
	"github.com/gin-gonic/gin"

	"Community_Feed/internal/model"
	"Community_Feed/internal/repository/rdb"
	"Community_Feed/internal/service"
)

// 每个接口的响应结构集中在这里

func userJSON(u *model.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"date_joined": u.CreatedAt,
	}
}

func communityJSON(v service.CommunityView) gin.H {
	return gin.H{
		"id":            v.ID,
		"name":          v.Name,
		"description":   v.Description,
		"created_at":    v.CreatedAt,
		"created_by":    v.CreatorName,
		"created_by_id": v.CreatorID,
		"member_count":  v.MemberCount,
		"post_count":    v.PostCount,
		"is_member":     v.IsMember,
	}
}

func communityDetailJSON(d *service.CommunityDetail) gin.H {
	out := communityJSON(d.CommunityView)
	members := make([]gin.H, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, memberJSON(m))
	}
	out["members"] = members
	return out
}

func communityCreatedJSON(c *model.Community) gin.H {
	return gin.H{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
	}
}

func memberJSON(m rdb.MemberRow) gin.H {
	return gin.H{
		"id":        m.ID,
		"user":      m.Username,
		"username":  m.Username,
		"joined_at": m.CreatedAt,
	}
}

func postJSON(v service.PostView) gin.H {
	return gin.H{
		"id":         v.ID,
		"content":    v.Content,
		"created_at": v.CreatedAt,
		"author": gin.H{
			"id":         v.AuthorID,
			"username":   v.AuthorUsername,
			"first_name": v.AuthorFirstName,
			"last_name":  v.AuthorLastName,
		},
		"community":      v.CommunityID,
		"community_name": v.CommunityName,
		"like_count":     v.LikeCount,
		"is_liked":       v.IsLiked,
	}
}

func likeJSON(l rdb.LikeRow) gin.H {
	return gin.H{
		"id":         l.ID,
		"user":       l.Username,
		"username":   l.Username,
		"post":       l.PostID,
		"created_at": l.CreatedAt,
	}
}

func listJSON[T any](items []T, shape func(T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, shape(item))
	}
	return out
}
