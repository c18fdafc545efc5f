package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
)

// Guard resolves a resource's ownership chain to the owning user and accepts
// or rejects an actor. It is read-only and is re-evaluated on every request;
// nothing here caches ownership between calls.
//
// A missing link anywhere in the chain (the resource itself, or an ancestor
// left dangling by a concurrent delete) reports ErrNotFound, never
// ErrForbidden, so the existence of orphaned rows is not leaked.
type Guard interface {
	OwnerOfProject(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
	OwnerOfPage(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error)
	OwnerOfOptimization(ctx context.Context, optID uuid.UUID) (uuid.UUID, error)

	AuthorizeProject(ctx context.Context, actor, projectID uuid.UUID) error
	AuthorizePage(ctx context.Context, actor, pageID uuid.UUID) error
	AuthorizeOptimization(ctx context.Context, actor, optID uuid.UUID) error
	// AuthorizeComment allows either the comment's author or the owner of
	// the project the comment hangs off.
	AuthorizeComment(ctx context.Context, actor, commentID uuid.UUID) error
}

type guard struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	projectRepo repos.ProjectRepo
	pageRepo    repos.PageRepo
	optRepo     repos.OptimizationRepo
	commentRepo repos.CommentRepo
}

func NewGuard(
	log *logger.Logger,
	userRepo repos.UserRepo,
	projectRepo repos.ProjectRepo,
	pageRepo repos.PageRepo,
	optRepo repos.OptimizationRepo,
	commentRepo repos.CommentRepo,
) Guard {
	return &guard{
		log:         log.With("service", "Guard"),
		userRepo:    userRepo,
		projectRepo: projectRepo,
		pageRepo:    pageRepo,
		optRepo:     optRepo,
		commentRepo: commentRepo,
	}
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

func (g *guard) OwnerOfProject(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	project, err := g.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return uuid.Nil, asNotFound(err)
	}
	return project.UserID, nil
}

func (g *guard) OwnerOfPage(ctx context.Context, pageID uuid.UUID) (uuid.UUID, error) {
	page, err := g.pageRepo.GetByID(ctx, nil, pageID)
	if err != nil {
		return uuid.Nil, asNotFound(err)
	}
	return g.OwnerOfProject(ctx, page.ProjectID)
}

func (g *guard) OwnerOfOptimization(ctx context.Context, optID uuid.UUID) (uuid.UUID, error) {
	opt, err := g.optRepo.GetByID(ctx, nil, optID)
	if err != nil {
		return uuid.Nil, asNotFound(err)
	}
	return g.OwnerOfPage(ctx, opt.PageID)
}

func (g *guard) check(actor, owner uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	if owner != actor {
		return apperr.ErrForbidden
	}
	return nil
}

func (g *guard) AuthorizeProject(ctx context.Context, actor, projectID uuid.UUID) error {
	owner, err := g.OwnerOfProject(ctx, projectID)
	if err != nil {
		return err
	}
	return g.check(actor, owner)
}

func (g *guard) AuthorizePage(ctx context.Context, actor, pageID uuid.UUID) error {
	owner, err := g.OwnerOfPage(ctx, pageID)
	if err != nil {
		return err
	}
	return g.check(actor, owner)
}

func (g *guard) AuthorizeOptimization(ctx context.Context, actor, optID uuid.UUID) error {
	owner, err := g.OwnerOfOptimization(ctx, optID)
	if err != nil {
		return err
	}
	return g.check(actor, owner)
}

func (g *guard) AuthorizeComment(ctx context.Context, actor, commentID uuid.UUID) error {
	if actor == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	comment, err := g.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		return asNotFound(err)
	}
	if comment.UserID == actor {
		return nil
	}
	owner, err := g.OwnerOfProject(ctx, comment.ProjectID)
	if err != nil {
		// Author check already failed; a dangling project must not
		// surface as forbidden.
		return fmt.Errorf("comment project lookup: %w", err)
	}
	if owner != actor {
		return apperr.ErrForbidden
	}
	return nil
}
