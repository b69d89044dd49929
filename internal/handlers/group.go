package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	group, err := h.groupService.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, group)
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.ListGroups(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"groups": groups})
}

func (h *GroupHandler) Invite(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid group id"))
		return
	}
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	membership, err := h.groupService.InviteMember(c.Request.Context(), groupID, req.Email, req.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, membership)
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid group id"))
		return
	}
	members, err := h.groupService.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"members": members})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid group id"))
		return
	}
	email := c.Param("email")
	if err := h.groupService.RemoveMember(c.Request.Context(), groupID, email); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"removed": true})
}
