package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

type ExtractionInput struct {
	ImageB64  string
	MediaType string
	ProjectID uuid.UUID
	PageName  string
}

type ExtractionOutput struct {
	Extraction *types.CanvasDocument `json:"extraction"`
	ImageURL   string                `json:"image_url,omitempty"`
	PageID     *uuid.UUID            `json:"page_id,omitempty"`
}

// ExtractionService runs the screenshot-to-canvas flow. The steps after the
// AI call are best-effort: a failed upload loses only the stored URL, and a
// failed page creation still returns the extraction. Nothing is rolled back.
type ExtractionService interface {
	Extract(ctx context.Context, actor uuid.UUID, input ExtractionInput) (*ExtractionOutput, error)
}

type extractionService struct {
	db        *gorm.DB
	log       *logger.Logger
	guard     Guard
	assistant DesignAssistant
	bucket    BucketService
	pageRepo  repos.PageRepo
	projRepo  repos.ProjectRepo
}

func NewExtractionService(
	db *gorm.DB,
	log *logger.Logger,
	guard Guard,
	assistant DesignAssistant,
	bucket BucketService,
	pageRepo repos.PageRepo,
	projRepo repos.ProjectRepo,
) ExtractionService {
	return &extractionService{
		db:        db,
		log:       log.With("service", "ExtractionService"),
		guard:     guard,
		assistant: assistant,
		bucket:    bucket,
		pageRepo:  pageRepo,
		projRepo:  projRepo,
	}
}

func extensionForMediaType(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

func (es *extractionService) Extract(ctx context.Context, actor uuid.UUID, input ExtractionInput) (*ExtractionOutput, error) {
	if input.ImageB64 == "" {
		return nil, fmt.Errorf("%w: image is required", apperr.ErrInvalidArgument)
	}
	if _, err := base64.StdEncoding.DecodeString(input.ImageB64); err != nil {
		return nil, fmt.Errorf("%w: image must be base64 encoded", apperr.ErrInvalidArgument)
	}

	doc, err := es.assistant.ExtractCanvas(ctx, input.ImageB64, input.MediaType)
	if err != nil {
		return nil, err
	}
	out := &ExtractionOutput{Extraction: doc}

	// Storage is optional: extraction succeeds without a stored image.
	if es.bucket != nil {
		key := fmt.Sprintf("screenshots/%s.%s", uuid.New(), extensionForMediaType(input.MediaType))
		raw, _ := base64.StdEncoding.DecodeString(input.ImageB64)
		url, upErr := es.bucket.UploadBytes(ctx, key, raw, input.MediaType)
		if upErr != nil {
			es.log.Warn("Screenshot upload failed, continuing without stored image", "error", upErr)
		} else {
			out.ImageURL = url
		}
	}

	// Page creation is attempted only for an authenticated owner of the
	// target project; failure surfaces partial success, not total failure.
	if input.ProjectID != uuid.Nil && actor != uuid.Nil {
		if err := es.guard.AuthorizeProject(ctx, actor, input.ProjectID); err != nil {
			return nil, err
		}
		pageID, pErr := es.createPage(ctx, input, doc, out.ImageURL)
		if pErr != nil {
			es.log.Warn("Page creation after extraction failed", "error", pErr, "project_id", input.ProjectID)
		} else {
			out.PageID = &pageID
		}
	}
	return out, nil
}

func (es *extractionService) createPage(ctx context.Context, input ExtractionInput, doc *types.CanvasDocument, imageURL string) (uuid.UUID, error) {
	canvasJSON, err := doc.JSON()
	if err != nil {
		return uuid.Nil, err
	}
	name := input.PageName
	if name == "" {
		name = "Untitled page"
	}
	count, err := es.pageRepo.CountByProject(ctx, nil, input.ProjectID)
	if err != nil {
		return uuid.Nil, err
	}
	page := &types.Page{
		ID:             uuid.New(),
		ProjectID:      input.ProjectID,
		Name:           name,
		Order:          int(count),
		CanvasData:     canvasJSON,
		SourceImageURL: imageURL,
	}
	if _, err := es.pageRepo.Create(ctx, nil, page); err != nil {
		return uuid.Nil, err
	}
	// First extracted page moves the project out of DRAFT.
	if err := es.projRepo.UpdateStatus(ctx, nil, input.ProjectID, types.ProjectAnalyzed); err != nil {
		es.log.Warn("Failed to update project status after extraction", "error", err)
	}
	return page.ID, nil
}
