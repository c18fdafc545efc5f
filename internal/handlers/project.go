package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
	}
}

func (ph *ProjectHandler) List(c *gin.Context) {
	actor := requestdata.UserID(c.Request.Context())
	projects, err := ph.projectService.List(c.Request.Context(), actor)
	if err != nil {
		RespondAppError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	project, err := ph.projectService.Create(c.Request.Context(), actor, req.Name, req.Description)
	if err != nil {
		RespondAppError(c, ph.log, err)
		return
	}
	RespondCreated(c, gin.H{"project": project})
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid project id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	project, err := ph.projectService.Get(c.Request.Context(), actor, projectID)
	if err != nil {
		RespondAppError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid project id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	if err := ph.projectService.Delete(c.Request.Context(), actor, projectID); err != nil {
		RespondAppError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "project deleted"})
}
