package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

// OptimizationService drives the optimization state machine:
//
//	PENDING -> REVISED/REFINED -> APPROVED
//	any non-terminal -> REJECTED (terminal)
//
// Every operation re-authorizes the actor through the guard before touching
// the record. Concurrent refines against the same optimization are
// last-write-wins; there is no version token.
type OptimizationService interface {
	Create(ctx context.Context, actor, pageID uuid.UUID) (*types.Optimization, error)
	// Optimize runs the first AI pass over a pending optimization.
	Optimize(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error)
	// Refine applies user feedback to an optimization that already has an
	// optimized design, appending a Refinement record.
	Refine(ctx context.Context, actor, optID uuid.UUID, feedback, category string) (*types.Optimization, *RefineResult, error)
	// RefineLatestForPage refines the newest optimization of a page.
	RefineLatestForPage(ctx context.Context, actor, pageID uuid.UUID, feedback, category string) (*types.Optimization, *RefineResult, error)
	// Apply copies the optimized design onto the owning page and approves
	// the optimization. Both writes commit atomically or not at all.
	Apply(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error)
	GenerateCode(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error)
	Reject(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error)
	ListForPage(ctx context.Context, actor, pageID uuid.UUID) ([]*types.Optimization, error)
}

type optimizationService struct {
	db        *gorm.DB
	log       *logger.Logger
	guard     Guard
	assistant DesignAssistant
	userRepo  repos.UserRepo
	pageRepo  repos.PageRepo
	optRepo   repos.OptimizationRepo
	refRepo   repos.RefinementRepo
}

func NewOptimizationService(
	db *gorm.DB,
	log *logger.Logger,
	guard Guard,
	assistant DesignAssistant,
	userRepo repos.UserRepo,
	pageRepo repos.PageRepo,
	optRepo repos.OptimizationRepo,
	refRepo repos.RefinementRepo,
) OptimizationService {
	return &optimizationService{
		db:        db,
		log:       log.With("service", "OptimizationService"),
		guard:     guard,
		assistant: assistant,
		userRepo:  userRepo,
		pageRepo:  pageRepo,
		optRepo:   optRepo,
		refRepo:   refRepo,
	}
}

func (s *optimizationService) Create(ctx context.Context, actor, pageID uuid.UUID) (*types.Optimization, error) {
	if err := s.guard.AuthorizePage(ctx, actor, pageID); err != nil {
		return nil, err
	}
	page, err := s.pageRepo.GetByID(ctx, nil, pageID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if len(page.CanvasData) == 0 {
		return nil, fmt.Errorf("%w: page has no canvas data", apperr.ErrMissingData)
	}
	// Snapshot, not a live reference: later page edits do not move the
	// baseline of this optimization.
	opt := &types.Optimization{
		ID:             uuid.New(),
		PageID:         pageID,
		Status:         types.OptimizationPending,
		OriginalDesign: page.CanvasData,
	}
	if _, err := s.optRepo.Create(ctx, nil, opt); err != nil {
		return nil, fmt.Errorf("Failed to create optimization: %w", err)
	}
	return opt, nil
}

func (s *optimizationService) Optimize(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error) {
	if err := s.guard.AuthorizeOptimization(ctx, actor, optID); err != nil {
		return nil, err
	}
	opt, err := s.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if opt.Status != types.OptimizationPending {
		return nil, fmt.Errorf("%w: optimization is %s, expected PENDING", apperr.ErrInvalidArgument, opt.Status)
	}
	original, err := types.ParseCanvasDocument(opt.OriginalDesign)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMissingData, err)
	}

	skill := types.SkillBeginner
	if user, uErr := s.userRepo.GetByID(ctx, nil, actor); uErr == nil {
		skill = user.SkillLevel
	}
	result, err := s.assistant.OptimizeDesign(ctx, original, skill)
	if err != nil {
		return nil, err
	}

	optimizedJSON, err := result.Optimized.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamFormat, err)
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return nil, err
	}
	score := result.QualityScore
	opt.OptimizedDesign = optimizedJSON
	opt.Suggestions = suggestionsJSON
	opt.AIAnalysis = result.Analysis
	opt.QualityScore = &score
	opt.Status = types.OptimizationRevised
	if err := s.optRepo.Save(ctx, nil, opt); err != nil {
		return nil, fmt.Errorf("Failed to save optimization: %w", err)
	}
	return opt, nil
}

func (s *optimizationService) Refine(ctx context.Context, actor, optID uuid.UUID, feedback, category string) (*types.Optimization, *RefineResult, error) {
	if len(feedback) < 10 {
		return nil, nil, fmt.Errorf("%w: feedback must be at least 10 characters", apperr.ErrInvalidArgument)
	}
	if category == "" {
		category = "general"
	}
	if err := s.guard.AuthorizeOptimization(ctx, actor, optID); err != nil {
		return nil, nil, err
	}
	opt, err := s.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return nil, nil, asNotFound(err)
	}
	if opt.Status.Terminal() {
		return nil, nil, fmt.Errorf("%w: optimization is rejected", apperr.ErrInvalidArgument)
	}
	// Refinement needs both documents; fail before any write so the record
	// is left untouched.
	if len(opt.OriginalDesign) == 0 || len(opt.OptimizedDesign) == 0 {
		return nil, nil, apperr.ErrMissingData
	}
	original, err := types.ParseCanvasDocument(opt.OriginalDesign)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrMissingData, err)
	}
	current, err := types.ParseCanvasDocument(opt.OptimizedDesign)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrMissingData, err)
	}

	result, err := s.assistant.RefineDesign(ctx, original, current, feedback, category)
	if err != nil {
		return nil, nil, err
	}
	optimizedJSON, err := result.Optimized.JSON()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamFormat, err)
	}
	feedbackJSON, err := json.Marshal(types.UserFeedbackRecord{
		Feedback:  feedback,
		Category:  category,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opt.OptimizedDesign = optimizedJSON
		opt.UserFeedback = feedbackJSON
		opt.Status = types.OptimizationRefined
		if err := s.optRepo.Save(ctx, tx, opt); err != nil {
			return fmt.Errorf("Failed to save optimization: %w", err)
		}
		ref := &types.Refinement{
			ID:             uuid.New(),
			OptimizationID: opt.ID,
			Category:       category,
		}
		if _, err := s.refRepo.Create(ctx, tx, ref); err != nil {
			return fmt.Errorf("Failed to create refinement: %w", err)
		}
		opt.Refinements = append(opt.Refinements, *ref)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return opt, result, nil
}

func (s *optimizationService) RefineLatestForPage(ctx context.Context, actor, pageID uuid.UUID, feedback, category string) (*types.Optimization, *RefineResult, error) {
	if err := s.guard.AuthorizePage(ctx, actor, pageID); err != nil {
		return nil, nil, err
	}
	latest, err := s.optRepo.LatestForPage(ctx, nil, pageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrNoOptimization
		}
		return nil, nil, err
	}
	return s.Refine(ctx, actor, latest.ID, feedback, category)
}

func (s *optimizationService) Apply(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error) {
	if err := s.guard.AuthorizeOptimization(ctx, actor, optID); err != nil {
		return nil, err
	}
	opt, err := s.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if len(opt.OptimizedDesign) == 0 {
		return nil, apperr.ErrNoDesign
	}
	if opt.Status != types.OptimizationRevised && opt.Status != types.OptimizationRefined {
		return nil, fmt.Errorf("%w: optimization is %s, expected REVISED or REFINED", apperr.ErrInvalidArgument, opt.Status)
	}
	// Applying the optimized design is the only operation that rewrites the
	// page canvas after creation; page write and status write commit
	// together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.pageRepo.UpdateCanvas(ctx, tx, opt.PageID, opt.OptimizedDesign); err != nil {
			return fmt.Errorf("Failed to update page canvas: %w", err)
		}
		if err := s.optRepo.UpdateStatus(ctx, tx, opt.ID, types.OptimizationApproved); err != nil {
			return fmt.Errorf("Failed to update optimization status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	opt.Status = types.OptimizationApproved
	return opt, nil
}

func (s *optimizationService) GenerateCode(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error) {
	if err := s.guard.AuthorizeOptimization(ctx, actor, optID); err != nil {
		return nil, err
	}
	opt, err := s.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if opt.Status.Terminal() {
		return nil, fmt.Errorf("%w: optimization is rejected", apperr.ErrInvalidArgument)
	}
	if len(opt.OptimizedDesign) == 0 {
		return nil, apperr.ErrNoDesign
	}
	design, err := types.ParseCanvasDocument(opt.OptimizedDesign)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMissingData, err)
	}
	bundle, err := s.assistant.GenerateCode(ctx, design)
	if err != nil {
		return nil, err
	}
	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, err
	}
	// Code generation does not require apply to have happened; both are
	// independent outcomes of the same optimized design.
	opt.GeneratedCode = bundleJSON
	opt.Status = types.OptimizationApproved
	if err := s.optRepo.Save(ctx, nil, opt); err != nil {
		return nil, fmt.Errorf("Failed to save optimization: %w", err)
	}
	return opt, nil
}

func (s *optimizationService) Reject(ctx context.Context, actor, optID uuid.UUID) (*types.Optimization, error) {
	if err := s.guard.AuthorizeOptimization(ctx, actor, optID); err != nil {
		return nil, err
	}
	opt, err := s.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if opt.Status.Terminal() {
		return nil, fmt.Errorf("%w: optimization is already rejected", apperr.ErrInvalidArgument)
	}
	if err := s.optRepo.UpdateStatus(ctx, nil, opt.ID, types.OptimizationRejected); err != nil {
		return nil, fmt.Errorf("Failed to update optimization status: %w", err)
	}
	opt.Status = types.OptimizationRejected
	return opt, nil
}

func (s *optimizationService) ListForPage(ctx context.Context, actor, pageID uuid.UUID) ([]*types.Optimization, error) {
	if err := s.guard.AuthorizePage(ctx, actor, pageID); err != nil {
		return nil, err
	}
	return s.optRepo.ListByPage(ctx, nil, pageID)
}
