package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type AnalyticsHandler struct {
	log       *logger.Logger
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(log *logger.Logger, analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:       log.With("handler", "AnalyticsHandler"),
		analytics: analytics,
	}
}

func (ah *AnalyticsHandler) ForProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid project id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	report, err := ah.analytics.ForProject(c.Request.Context(), actor, projectID)
	if err != nil {
		RespondAppError(c, ah.log, err)
		return
	}
	RespondOK(c, report)
}
