package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
)

type ErrorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondAppError maps a service error onto the API taxonomy. Client errors
// echo their message; anything unexpected becomes a generic 500 with full
// detail kept server-side only.
func RespondAppError(c *gin.Context, log *logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.Code(err)
	if status >= 500 {
		log.Error("Request failed", "error", err, "path", c.FullPath())
		msg := "internal error"
		if status == http.StatusBadGateway {
			msg = "upstream request failed"
		}
		c.JSON(status, ErrorEnvelope{Error: msg, Code: code})
		return
	}
	log.Warn("Request rejected", "error", err, "path", c.FullPath(), "status", status)
	c.JSON(status, ErrorEnvelope{Error: err.Error(), Code: code})
}
