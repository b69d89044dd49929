package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Post(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	msg, err := h.chatService.Post(c.Request.Context(), projectID, req.Body)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, msg)
}

func (h *ChatHandler) Fetch(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	sinceSeq, _ := strconv.ParseInt(c.DefaultQuery("since_seq", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	msgs, err := h.chatService.Fetch(c.Request.Context(), projectID, sinceSeq, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

func (h *ChatHandler) AskAthena(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	question, reply, err := h.chatService.AskAthena(c.Request.Context(), projectID, req.Text)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"question": question, "reply": reply})
}

func (h *ChatHandler) ListAthena(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	msgs, err := h.chatService.ListAthena(c.Request.Context(), projectID, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

func (h *ChatHandler) AddSupervisorComment(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	var req struct {
		Text          string `json:"text"`
		ExplainedText string `json:"explained_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	comment, err := h.chatService.AddSupervisorComment(c.Request.Context(), projectID, req.Text, req.ExplainedText)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, comment)
}

func (h *ChatHandler) ListSupervisorComments(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	comments, err := h.chatService.ListSupervisorComments(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"comments": comments})
}
