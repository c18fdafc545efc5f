package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/services"
)

type OptimizeHandler struct {
	log        *logger.Logger
	optService services.OptimizationService
}

func NewOptimizeHandler(log *logger.Logger, optService services.OptimizationService) *OptimizeHandler {
	return &OptimizeHandler{
		log:        log.With("handler", "OptimizeHandler"),
		optService: optService,
	}
}

// Create starts a new optimization for a page and runs the first AI pass.
func (oh *OptimizeHandler) Create(c *gin.Context) {
	var req struct {
		PageID string `json:"pageId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	pageID, err := uuid.Parse(req.PageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid page id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, err := oh.optService.Create(c.Request.Context(), actor, pageID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	opt, err = oh.optService.Optimize(c.Request.Context(), actor, opt.ID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondCreated(c, gin.H{"optimization": opt})
}

// Feedback applies user feedback to a specific optimization.
func (oh *OptimizeHandler) Feedback(c *gin.Context) {
	var req struct {
		OptimizationID string `json:"optimizationId"`
		Feedback       string `json:"feedback"`
		Category       string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	optID, err := uuid.Parse(req.OptimizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid optimization id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, result, err := oh.optService.Refine(c.Request.Context(), actor, optID, req.Feedback, req.Category)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{
		"optimization": opt,
		"changes":      result.Changes,
		"explanation":  result.Explanation,
	})
}

// Refine applies feedback to the newest optimization of a page.
func (oh *OptimizeHandler) Refine(c *gin.Context) {
	var req struct {
		PageID   string `json:"pageId"`
		Feedback string `json:"feedback"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	pageID, err := uuid.Parse(req.PageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid page id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, result, err := oh.optService.RefineLatestForPage(c.Request.Context(), actor, pageID, req.Feedback, req.Category)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	refinement := gin.H{}
	if n := len(opt.Refinements); n > 0 {
		refinement = gin.H{
			"id":       opt.Refinements[n-1].ID,
			"category": opt.Refinements[n-1].Category,
		}
	}
	RespondOK(c, gin.H{
		"refinement":     refinement,
		"optimizationId": opt.ID,
		"changes":        result.Changes,
		"explanation":    result.Explanation,
	})
}

func (oh *OptimizeHandler) Apply(c *gin.Context) {
	optID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid optimization id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, err := oh.optService.Apply(c.Request.Context(), actor, optID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"pageId": opt.PageID, "status": opt.Status})
}

func (oh *OptimizeHandler) GenerateCode(c *gin.Context) {
	var req struct {
		OptimizationID string `json:"optimizationId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid request body"})
		return
	}
	optID, err := uuid.Parse(req.OptimizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid optimization id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, err := oh.optService.GenerateCode(c.Request.Context(), actor, optID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"optimization": opt, "code": opt.GeneratedCode})
}

func (oh *OptimizeHandler) Reject(c *gin.Context) {
	optID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid optimization id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opt, err := oh.optService.Reject(c.Request.Context(), actor, optID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"optimization": opt})
}

// List returns a page's optimizations newest-first with refinements.
func (oh *OptimizeHandler) List(c *gin.Context) {
	pageParam := c.Query("pageId")
	if pageParam == "" {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "pageId is required"})
		return
	}
	pageID, err := uuid.Parse(pageParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: "invalid page id"})
		return
	}
	actor := requestdata.UserID(c.Request.Context())
	opts, err := oh.optService.ListForPage(c.Request.Context(), actor, pageID)
	if err != nil {
		RespondAppError(c, oh.log, err)
		return
	}
	RespondOK(c, gin.H{"optimizations": opts})
}
