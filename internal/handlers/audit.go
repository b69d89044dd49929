package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/services"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AuditHandler struct {
	auditService   services.AuditService
	abilityService services.AbilityService
}

func NewAuditHandler(auditService services.AuditService, abilityService services.AbilityService) *AuditHandler {
	return &AuditHandler{auditService: auditService, abilityService: abilityService}
}

// Export returns journal entries since a timestamp. Mentors can always
// export; anyone else needs the audit_export ability.
func (h *AuditHandler) Export(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Auth("no active session"))
		return
	}
	if !rd.Mentor {
		allowed, err := h.abilityService.Can(c.Request.Context(), rd.Email, abilities.AuditExport)
		if err != nil {
			RespondError(c, err)
			return
		}
		if !allowed {
			RespondError(c, apierr.Permission("audit export requires the mentor role or the audit_export ability"))
			return
		}
	}

	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, apierr.Validation("since must be RFC3339"))
			return
		}
		since = parsed
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.auditService.FetchSince(c.Request.Context(), since, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

// Status records a liveness heartbeat for the calling session.
func (h *AuditHandler) Status(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Auth("no active session"))
		return
	}
	h.auditService.LogEvent(c.Request.Context(), rd.Email, types.AuditStatus, map[string]any{
		"email":     rd.Email,
		"read_only": rd.ReadOnly,
	})
	RespondOK(c, gin.H{"status": "ok", "read_only": rd.ReadOnly})
}
