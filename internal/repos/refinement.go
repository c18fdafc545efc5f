package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

// RefinementRepo is append-only: refinements are never updated or deleted
// individually, only cascaded away with their optimization.
type RefinementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ref *types.Refinement) (*types.Refinement, error)
	ListByOptimization(ctx context.Context, tx *gorm.DB, optID uuid.UUID) ([]*types.Refinement, error)
}

type refinementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRefinementRepo(db *gorm.DB, baseLog *logger.Logger) RefinementRepo {
	repoLog := baseLog.With("repo", "RefinementRepo")
	return &refinementRepo{db: db, log: repoLog}
}

func (rr *refinementRepo) Create(ctx context.Context, tx *gorm.DB, ref *types.Refinement) (*types.Refinement, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(ref).Error; err != nil {
		return nil, err
	}
	return ref, nil
}

func (rr *refinementRepo) ListByOptimization(ctx context.Context, tx *gorm.DB, optID uuid.UUID) ([]*types.Refinement, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Refinement
	if err := transaction.WithContext(ctx).
		Where("optimization_id = ?", optID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
