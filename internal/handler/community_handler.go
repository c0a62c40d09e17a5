package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/middleware"
	"Community_Feed/internal/service"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
}

type CommunityUpdateReq struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if !bindJSON(c, &req) {
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, communityCreatedJSON(community))
}

// List 匿名可读，is_member 对匿名恒为 false
func (h *CommunityHandler) List(c *gin.Context) {
	page, err := h.svc.ListCommunities(c.Request.Context(), middleware.UserID(c), pageParam(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page, communityJSON)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetCommunity(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, communityDetailJSON(detail))
}

func (h *CommunityHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CommunityUpdateReq
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.svc.UpdateCommunity(c.Request.Context(), middleware.UserID(c), id, service.CommunityUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, communityJSON(*view))
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCommunity(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	community, err := h.svc.JoinCommunity(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Successfully joined " + community.Name})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	community, err := h.svc.LeaveCommunity(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully left " + community.Name})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listJSON(members, memberJSON))
}
