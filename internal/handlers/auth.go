package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Passkey  string `json:"passkey"`
		LabCode  string `json:"lab_code"`
		Consent  bool   `json:"consent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	session, err := ah.authService.Authenticate(c.Request.Context(), services.AuthenticateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Passkey:  req.Passkey,
		LabCode:  req.LabCode,
		Consent:  req.Consent,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	session, err := ah.authService.Refresh(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ah *AuthHandler) RefreshLicense(c *gin.Context) {
	st, err := ah.authService.RefreshLicense(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"valid":      st.Valid,
		"reason":     st.Reason,
		"checked_at": st.CheckedAt,
	})
}

func (ah *AuthHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Auth("no active session"))
		return
	}
	RespondOK(c, gin.H{
		"user_id":   rd.UserID,
		"email":     rd.Email,
		"full_name": rd.FullName,
		"mentor":    rd.Mentor,
		"read_only": rd.ReadOnly,
	})
}
