package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/services"
)

type AbilityHandler struct {
	abilityService services.AbilityService
}

func NewAbilityHandler(abilityService services.AbilityService) *AbilityHandler {
	return &AbilityHandler{abilityService: abilityService}
}

// Check answers "can I use this ability" for the calling principal.
func (h *AbilityHandler) Check(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Auth("no active session"))
		return
	}
	ability := c.Query("ability")
	if ability == "" {
		RespondError(c, apierr.Validation("ability query parameter is required"))
		return
	}
	allowed, err := h.abilityService.Can(c.Request.Context(), rd.Email, ability)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"ability": ability, "allowed": allowed})
}

func (h *AbilityHandler) RequestAccess(c *gin.Context) {
	var req struct {
		Ability string `json:"ability"`
		Context string `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ability == "" {
		RespondError(c, apierr.Validation("ability is required"))
		return
	}
	h.abilityService.RequestAccess(c.Request.Context(), req.Ability, req.Context)
	RespondOK(c, gin.H{"requested": true})
}

func (h *AbilityHandler) Grant(c *gin.Context) {
	var req struct {
		Email   string `json:"email"`
		Ability string `json:"ability"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	grant, err := h.abilityService.Grant(c.Request.Context(), req.Email, req.Ability)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, grant)
}

func (h *AbilityHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Auth("no active session"))
		return
	}
	grants, err := h.abilityService.ListGrants(c.Request.Context(), rd.Email)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"grants": grants})
}
