package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type UserHandler struct {
	log     *logger.Logger
	limiter services.RateLimiter
	class   string
}

func NewUserHandler(log *logger.Logger, limiter services.RateLimiter, class string) *UserHandler {
	return &UserHandler{
		log:     log.With("handler", "UserHandler"),
		limiter: limiter,
		class:   class,
	}
}

// RateLimit reports the remaining AI-call quota without consuming any.
func (uh *UserHandler) RateLimit(c *gin.Context) {
	actor := requestdata.UserID(c.Request.Context())
	quota, err := uh.limiter.Remaining(c.Request.Context(), actor, uh.class)
	if err != nil {
		RespondAppError(c, uh.log, err)
		return
	}
	RespondOK(c, quota)
}
