package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

// ProjectWithCount is the list-view shape: the project with its pages plus a
// page count for the dashboard.
type ProjectWithCount struct {
	*types.Project
	PageCount int64 `json:"page_count"`
}

type ProjectService interface {
	Create(ctx context.Context, actor uuid.UUID, name, description string) (*types.Project, error)
	Get(ctx context.Context, actor, projectID uuid.UUID) (*types.Project, error)
	List(ctx context.Context, actor uuid.UUID) ([]*ProjectWithCount, error)
	Delete(ctx context.Context, actor, projectID uuid.UUID) error
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	guard       Guard
	projectRepo repos.ProjectRepo
	pageRepo    repos.PageRepo
}

func NewProjectService(
	db *gorm.DB,
	log *logger.Logger,
	guard Guard,
	projectRepo repos.ProjectRepo,
	pageRepo repos.PageRepo,
) ProjectService {
	return &projectService{
		db:          db,
		log:         log.With("service", "ProjectService"),
		guard:       guard,
		projectRepo: projectRepo,
		pageRepo:    pageRepo,
	}
}

func (ps *projectService) Create(ctx context.Context, actor uuid.UUID, name, description string) (*types.Project, error) {
	if actor == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", apperr.ErrInvalidArgument)
	}
	project := &types.Project{
		ID:          uuid.New(),
		UserID:      actor,
		Name:        name,
		Description: description,
		Status:      types.ProjectDraft,
	}
	if _, err := ps.projectRepo.Create(ctx, nil, project); err != nil {
		return nil, fmt.Errorf("Failed to create project: %w", err)
	}
	return project, nil
}

func (ps *projectService) Get(ctx context.Context, actor, projectID uuid.UUID) (*types.Project, error) {
	if err := ps.guard.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	project, err := ps.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, asNotFound(err)
	}
	pages, err := ps.pageRepo.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	project.Pages = make([]types.Page, 0, len(pages))
	for _, p := range pages {
		project.Pages = append(project.Pages, *p)
	}
	return project, nil
}

func (ps *projectService) List(ctx context.Context, actor uuid.UUID) ([]*ProjectWithCount, error) {
	if actor == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	projects, err := ps.projectRepo.ListByUser(ctx, nil, actor)
	if err != nil {
		return nil, fmt.Errorf("Failed to list projects: %w", err)
	}
	results := make([]*ProjectWithCount, 0, len(projects))
	for _, p := range projects {
		results = append(results, &ProjectWithCount{
			Project:   p,
			PageCount: int64(len(p.Pages)),
		})
	}
	return results, nil
}

func (ps *projectService) Delete(ctx context.Context, actor, projectID uuid.UUID) error {
	if err := ps.guard.AuthorizeProject(ctx, actor, projectID); err != nil {
		return err
	}
	// Cascade takes the pages, optimizations and refinements with it.
	if err := ps.projectRepo.Delete(ctx, nil, projectID); err != nil {
		return fmt.Errorf("Failed to delete project: %w", err)
	}
	return nil
}
