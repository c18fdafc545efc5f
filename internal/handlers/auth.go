package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/services"
	"github.com/yungbote/pixelcraft-backend/internal/types"
	"github.com/yungbote/pixelcraft-backend/internal/utils"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email      string           `json:"email"`
		Password   string           `json:"password"`
		Name       string           `json:"name"`
		SkillLevel types.SkillLevel `json:"skill_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	user, err := ah.authService.Signup(c.Request.Context(), req.Email, req.Password, req.Name, req.SkillLevel)
	if err != nil {
		RespondAppError(c, ah.log, err)
		return
	}
	RespondCreated(c, gin.H{"userId": user.ID})
}

func (ah *AuthHandler) CheckEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	exists, err := ah.authService.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		RespondAppError(c, ah.log, err)
		return
	}
	RespondOK(c, gin.H{"exists": exists, "email": utils.NormalizeEmail(req.Email)})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	token, user, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, ah.log, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   expiresIn,
		"user":         user,
	})
}
