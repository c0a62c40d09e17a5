package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/middleware"
	"Community_Feed/internal/service"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

// Toggle 点赞返回 201，取消点赞返回 200
func (h *PostLikeHandler) Toggle(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.Toggle(c.Request.Context(), middleware.UserID(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}

	status, msg := http.StatusOK, "Post unliked"
	if res.Liked {
		status, msg = http.StatusCreated, "Post liked"
	}
	c.JSON(status, gin.H{
		"message":    msg,
		"is_liked":   res.Liked,
		"like_count": res.LikeCount,
	})
}

func (h *PostLikeHandler) List(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	likes, err := h.svc.ListLikes(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listJSON(likes, likeJSON))
}
