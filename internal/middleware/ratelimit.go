package middleware

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

type RateLimitMiddleware struct {
	log     *logger.Logger
	limiter services.RateLimiter
}

func NewRateLimitMiddleware(log *logger.Logger, limiter services.RateLimiter) *RateLimitMiddleware {
	middlewareLog := log.With("middleware", "RateLimitMiddleware")
	return &RateLimitMiddleware{log: middlewareLog, limiter: limiter}
}

// Limit consumes one slot of the class's window for the authenticated user.
// Anonymous requests pass through; the endpoints behind this middleware are
// authenticated anyway.
func (rm *RateLimitMiddleware) Limit(class string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := requestdata.UserID(c.Request.Context())
		if userID == uuid.Nil {
			c.Next()
			return
		}
		quota, err := rm.limiter.Consume(c.Request.Context(), userID, class)
		if err != nil {
			if errors.Is(err, apperr.ErrThrottled) {
				c.Header("Retry-After", strconv.Itoa(quota.ResetSeconds))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error": "rate limit exceeded",
					"code":  "throttled",
					"reset": quota.ResetSeconds,
				})
				return
			}
			rm.log.Error("Rate limit check failed", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))
		c.Next()
	}
}
