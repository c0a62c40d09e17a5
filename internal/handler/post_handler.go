package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/middleware"
	"Community_Feed/internal/service"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	Community uint64 `json:"community" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

type UpdatePostReq struct {
	Content *string `json:"content"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建帖子接口，返回完整的帖子
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), middleware.UserID(c), req.Community, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postJSON(*post))
}

// List 全部帖子，?community= 过滤
func (h *PostHandler) List(c *gin.Context) {
	var communityID uint64
	if raw := c.Query("community"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"community": []string{"Select a valid choice."}})
			return
		}
		communityID = id
	}

	page, err := h.svc.ListPosts(c.Request.Context(), middleware.UserID(c), communityID, pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page, postJSON)
}

// Feed 社区信息流，非成员得到空列表
func (h *PostHandler) Feed(c *gin.Context) {
	communityID, ok := idParam(c, "id")
	if !ok {
		return
	}

	page, err := h.svc.Feed(c.Request.Context(), middleware.UserID(c), communityID, pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page, postJSON)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), middleware.UserID(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postJSON(*post))
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePostReq
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), middleware.UserID(c), postID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postJSON(*post))
}

// DeletePost 删除帖子接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), middleware.UserID(c), postID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
