package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

type PageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, page *types.Page) (*types.Page, error)
	GetByID(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Page, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Page, error)
	UpdateCanvas(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, canvas datatypes.JSON) error
	CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	repoLog := baseLog.With("repo", "PageRepo")
	return &pageRepo{db: db, log: repoLog}
}

func (pr *pageRepo) Create(ctx context.Context, tx *gorm.DB, page *types.Page) (*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (pr *pageRepo) GetByID(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Page
	if err := transaction.WithContext(ctx).
		Where("id = ?", pageID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *pageRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Page
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pageRepo) UpdateCanvas(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, canvas datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Page{}).
		Where("id = ?", pageID).
		Update("canvas_data", canvas).Error
}

func (pr *pageRepo) CountByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Page{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
