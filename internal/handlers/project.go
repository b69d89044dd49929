package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid group id"))
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	project, err := h.projectService.CreateProject(c.Request.Context(), groupID, req.Title)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid group id"))
		return
	}
	projects, err := h.projectService.ListProjects(c.Request.Context(), groupID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (h *ProjectHandler) AddFinding(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	var req struct {
		Text          string `json:"text"`
		Quality       string `json:"quality"`
		ForSupervisor bool   `json:"for_supervisor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	finding, err := h.projectService.AddFinding(c.Request.Context(), services.AddFindingInput{
		ProjectID:     projectID,
		Text:          req.Text,
		Quality:       req.Quality,
		ForSupervisor: req.ForSupervisor,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, finding)
}

func (h *ProjectHandler) ListFindings(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid project id"))
		return
	}
	findings, err := h.projectService.ListFindings(c.Request.Context(), projectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"findings": findings})
}
