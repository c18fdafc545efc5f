package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

type OptimizationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, opt *types.Optimization) (*types.Optimization, error)
	GetByID(ctx context.Context, tx *gorm.DB, optID uuid.UUID) (*types.Optimization, error)
	Save(ctx context.Context, tx *gorm.DB, opt *types.Optimization) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, optID uuid.UUID, status types.OptimizationStatus) error
	// LatestForPage returns the newest optimization for a page, or
	// gorm.ErrRecordNotFound when the page has none.
	LatestForPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Optimization, error)
	// ListByPage returns a page's optimizations newest-first with their
	// refinements preloaded.
	ListByPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) ([]*types.Optimization, error)
	// ListByProject returns all optimizations under a project's pages with
	// refinements preloaded, for aggregate reporting.
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Optimization, error)
}

type optimizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOptimizationRepo(db *gorm.DB, baseLog *logger.Logger) OptimizationRepo {
	repoLog := baseLog.With("repo", "OptimizationRepo")
	return &optimizationRepo{db: db, log: repoLog}
}

func (or *optimizationRepo) Create(ctx context.Context, tx *gorm.DB, opt *types.Optimization) (*types.Optimization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	if err := transaction.WithContext(ctx).Create(opt).Error; err != nil {
		return nil, err
	}
	return opt, nil
}

func (or *optimizationRepo) GetByID(ctx context.Context, tx *gorm.DB, optID uuid.UUID) (*types.Optimization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var result types.Optimization
	if err := transaction.WithContext(ctx).
		Where("id = ?", optID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *optimizationRepo) Save(ctx context.Context, tx *gorm.DB, opt *types.Optimization) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Save(opt).Error
}

func (or *optimizationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, optID uuid.UUID, status types.OptimizationStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Optimization{}).
		Where("id = ?", optID).
		Update("status", status).Error
}

func (or *optimizationRepo) LatestForPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Optimization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var result types.Optimization
	if err := transaction.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *optimizationRepo) ListByPage(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) ([]*types.Optimization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Optimization
	if err := transaction.WithContext(ctx).
		Preload("Refinements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("page_id = ?", pageID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *optimizationRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Optimization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Optimization
	if err := transaction.WithContext(ctx).
		Preload("Refinements").
		Joins("JOIN page ON page.id = optimization.page_id").
		Where("page.project_id = ?", projectID).
		Order("optimization.created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
