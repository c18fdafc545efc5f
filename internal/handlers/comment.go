package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type CommentHandler struct {
	log            *logger.Logger
	commentService services.CommentService
}

func NewCommentHandler(log *logger.Logger, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		log:            log.With("handler", "CommentHandler"),
		commentService: commentService,
	}
}

func (ch *CommentHandler) Create(c *gin.Context) {
	var req struct {
		ProjectID string `json:"projectId"`
		Content   string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid project id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	comment, err := ch.commentService.Create(c.Request.Context(), actor, projectID, req.Content)
	if err != nil {
		RespondAppError(c, ch.log, err)
		return
	}
	RespondCreated(c, gin.H{"comment": comment})
}

func (ch *CommentHandler) Patch(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid comment id"})
		return
	}
	var patch services.CommentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	comment, err := ch.commentService.Patch(c.Request.Context(), actor, commentID, patch)
	if err != nil {
		RespondAppError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"comment": comment})
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid comment id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	if err := ch.commentService.Delete(c.Request.Context(), actor, commentID); err != nil {
		RespondAppError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "comment deleted"})
}
