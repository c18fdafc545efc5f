package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type ExtractHandler struct {
	log        *logger.Logger
	extraction services.ExtractionService
	limiter    services.RateLimiter
	class      string
}

func NewExtractHandler(log *logger.Logger, extraction services.ExtractionService, limiter services.RateLimiter, class string) *ExtractHandler {
	return &ExtractHandler{
		log:        log.With("handler", "ExtractHandler"),
		extraction: extraction,
		limiter:    limiter,
		class:      class,
	}
}

func (eh *ExtractHandler) Extract(c *gin.Context) {
	var req struct {
		Image     string `json:"image"`
		MediaType string `json:"mediaType"`
		ProjectID string `json:"projectId"`
		PageName  string `json:"pageName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())

	// Auth is optional here, but authenticated callers still burn quota.
	if actor != uuid.Nil {
		quota, err := eh.limiter.Consume(c.Request.Context(), actor, eh.class)
		if err != nil {
			if errors.Is(err, apperr.ErrThrottled) {
				c.Header("Retry-After", strconv.Itoa(quota.ResetSeconds))
			}
			RespondAppError(c, eh.log, err)
			return
		}
	}

	input := services.ExtractionInput{
		ImageB64:  req.Image,
		MediaType: req.MediaType,
		PageName:  req.PageName,
	}
	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid project id"})
			return
		}
		input.ProjectID = projectID
	}

	out, err := eh.extraction.Extract(c.Request.Context(), actor, input)
	if err != nil {
		RespondAppError(c, eh.log, err)
		return
	}
	RespondCreated(c, out)
}
