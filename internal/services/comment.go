package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

type CommentPatch struct {
	Content    *string `json:"content,omitempty"`
	IsResolved *bool   `json:"is_resolved,omitempty"`
}

type CommentService interface {
	Create(ctx context.Context, actor, projectID uuid.UUID, content string) (*types.Comment, error)
	ListForProject(ctx context.Context, actor, projectID uuid.UUID) ([]*types.Comment, error)
	Patch(ctx context.Context, actor, commentID uuid.UUID, patch CommentPatch) (*types.Comment, error)
	Delete(ctx context.Context, actor, commentID uuid.UUID) error
}

type commentService struct {
	log         *logger.Logger
	guard       Guard
	commentRepo repos.CommentRepo
}

func NewCommentService(log *logger.Logger, guard Guard, commentRepo repos.CommentRepo) CommentService {
	return &commentService{
		log:         log.With("service", "CommentService"),
		guard:       guard,
		commentRepo: commentRepo,
	}
}

func (cs *commentService) Create(ctx context.Context, actor, projectID uuid.UUID, content string) (*types.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", apperr.ErrInvalidArgument)
	}
	if err := cs.guard.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	comment := &types.Comment{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    actor,
		Content:   content,
	}
	if _, err := cs.commentRepo.Create(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("Failed to create comment: %w", err)
	}
	return comment, nil
}

func (cs *commentService) ListForProject(ctx context.Context, actor, projectID uuid.UUID) ([]*types.Comment, error) {
	if err := cs.guard.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return cs.commentRepo.ListByProject(ctx, nil, projectID)
}

func (cs *commentService) Patch(ctx context.Context, actor, commentID uuid.UUID, patch CommentPatch) (*types.Comment, error) {
	if err := cs.guard.AuthorizeComment(ctx, actor, commentID); err != nil {
		return nil, err
	}
	comment, err := cs.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if patch.Content == nil && patch.IsResolved == nil {
		return nil, fmt.Errorf("%w: nothing to update", apperr.ErrInvalidArgument)
	}
	if patch.Content != nil {
		if *patch.Content == "" {
			return nil, fmt.Errorf("%w: comment content cannot be empty", apperr.ErrInvalidArgument)
		}
		comment.Content = *patch.Content
	}
	if patch.IsResolved != nil {
		comment.IsResolved = *patch.IsResolved
	}
	if err := cs.commentRepo.Save(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("Failed to update comment: %w", err)
	}
	return comment, nil
}

func (cs *commentService) Delete(ctx context.Context, actor, commentID uuid.UUID) error {
	if err := cs.guard.AuthorizeComment(ctx, actor, commentID); err != nil {
		return err
	}
	if err := cs.commentRepo.Delete(ctx, nil, commentID); err != nil {
		return fmt.Errorf("Failed to delete comment: %w", err)
	}
	return nil
}
