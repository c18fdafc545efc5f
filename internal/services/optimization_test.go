package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

// fakeAssistant returns canned results so lifecycle tests never touch the
// model provider.
type fakeAssistant struct {
	optimizeErr error
	refineErr   error
}

func improvedCanvas() *types.CanvasDocument {
	return &types.CanvasDocument{
		Version:    "1.0",
		Background: "#fafafa",
		Objects: []types.CanvasObject{
			{Type: "rect", Left: 0, Top: 0, Width: 120, Height: 44, Fill: "#1a73e8", Radius: 6},
			{Type: "text", Left: 16, Top: 12, Width: 88, Height: 20, Text: "Sign up", FontSize: 16, FontWeight: "600"},
		},
	}
}

func (f *fakeAssistant) ExtractCanvas(ctx context.Context, imageB64, mediaType string) (*types.CanvasDocument, error) {
	return improvedCanvas(), nil
}

func (f *fakeAssistant) OptimizeDesign(ctx context.Context, original *types.CanvasDocument, skill types.SkillLevel) (*OptimizeResult, error) {
	if f.optimizeErr != nil {
		return nil, f.optimizeErr
	}
	return &OptimizeResult{
		Optimized: improvedCanvas(),
		Suggestions: []Suggestion{
			{Target: "rect", Suggestion: "round the button corners", Reasoning: "softer hierarchy"},
		},
		Analysis:     "tightened spacing and contrast",
		QualityScore: 62,
	}, nil
}

func (f *fakeAssistant) RefineDesign(ctx context.Context, original, current *types.CanvasDocument, feedback, category string) (*RefineResult, error) {
	if f.refineErr != nil {
		return nil, f.refineErr
	}
	doc := improvedCanvas()
	doc.Background = "#ffffff"
	return &RefineResult{
		Optimized:   doc,
		Changes:     []string{"lightened the background"},
		Explanation: "applied the requested contrast change",
	}, nil
}

func (f *fakeAssistant) GenerateCode(ctx context.Context, design *types.CanvasDocument) (map[string]any, error) {
	return map[string]any{
		"framework": "react",
		"files":     map[string]any{"src/App.jsx": "export default function App() {}"},
	}, nil
}

func newOptimizationService(env *testEnv, assistant DesignAssistant) OptimizationService {
	return NewOptimizationService(env.db, logger.NewNop(), env.guard, assistant, env.users, env.pages, env.opts, env.refs)
}

func TestOptimizationService_CreateSnapshotsCanvas(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if opt.Status != types.OptimizationPending {
		t.Fatalf("status = %s, want PENDING", opt.Status)
	}

	// Later page edits must not move the optimization's baseline.
	if err := env.pages.UpdateCanvas(ctx, nil, page.ID, testCanvas(t, "#222222")); err != nil {
		t.Fatalf("update canvas: %v", err)
	}
	reloaded, err := env.opts.GetByID(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("reload optimization: %v", err)
	}
	if !bytes.Equal(reloaded.OriginalDesign, testCanvas(t, "#111111")) {
		t.Fatalf("original design moved with the page canvas")
	}
}

func TestOptimizationService_CreateRequiresCanvasData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, nil)
	svc := newOptimizationService(env, &fakeAssistant{})

	_, err := svc.Create(ctx, user.ID, page.ID)
	if !errors.Is(err, apperr.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

func TestOptimizationService_OptimizeTransitionsToRevised(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	opt, err = svc.Optimize(ctx, user.ID, opt.ID)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if opt.Status != types.OptimizationRevised {
		t.Fatalf("status = %s, want REVISED", opt.Status)
	}
	if len(opt.OptimizedDesign) == 0 {
		t.Fatalf("optimized design not persisted")
	}
	if opt.QualityScore == nil || *opt.QualityScore != 62 {
		t.Fatalf("quality score = %v, want 62", opt.QualityScore)
	}
	if opt.AIAnalysis == "" {
		t.Fatalf("analysis not persisted")
	}

	// A second pass over the same record is rejected.
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on re-optimize, got %v", err)
	}
}

func TestOptimizationService_RefineAppendsRefinement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	opt, result, err := svc.Refine(ctx, user.ID, opt.ID, "increase the contrast on the button", "color")
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if opt.Status != types.OptimizationRefined {
		t.Fatalf("status = %s, want REFINED", opt.Status)
	}
	if len(result.Changes) == 0 || result.Explanation == "" {
		t.Fatalf("refine result incomplete: %+v", result)
	}
	refs, err := env.refs.ListByOptimization(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("list refinements: %v", err)
	}
	if len(refs) != 1 || refs[0].Category != "color" {
		t.Fatalf("refinements = %+v, want one with category color", refs)
	}
	if len(opt.UserFeedback) == 0 {
		t.Fatalf("user feedback not persisted")
	}
}

func TestOptimizationService_RefineWithoutOptimizedDesign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = svc.Refine(ctx, user.ID, opt.ID, "increase the contrast on the button", "color")
	if !errors.Is(err, apperr.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}

	// The failed refine must leave the record untouched.
	reloaded, err := env.opts.GetByID(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("reload optimization: %v", err)
	}
	if reloaded.Status != types.OptimizationPending {
		t.Fatalf("status = %s, want PENDING", reloaded.Status)
	}
	if len(reloaded.UserFeedback) != 0 {
		t.Fatalf("user feedback written on failed refine")
	}
	refs, err := env.refs.ListByOptimization(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("list refinements: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("refinement written on failed refine")
	}
}

func TestOptimizationService_RefineRejectsShortFeedback(t *testing.T) {
	env := newTestEnv(t)
	svc := newOptimizationService(env, &fakeAssistant{})
	_, _, err := svc.Refine(context.Background(), uuid.New(), uuid.New(), "too short", "color")
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOptimizationService_RefineLatestForPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	_, _, err := svc.RefineLatestForPage(ctx, user.ID, page.ID, "increase the contrast on the button", "color")
	if !errors.Is(err, apperr.ErrNoOptimization) {
		t.Fatalf("expected ErrNoOptimization, got %v", err)
	}

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	refined, _, err := svc.RefineLatestForPage(ctx, user.ID, page.ID, "increase the contrast on the button", "color")
	if err != nil {
		t.Fatalf("refine latest: %v", err)
	}
	if refined.ID != opt.ID {
		t.Fatalf("refined %s, want latest optimization %s", refined.ID, opt.ID)
	}
}

func TestOptimizationService_ApplyWritesPageAndApproves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	opt, err = svc.Optimize(ctx, user.ID, opt.ID)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	applied, err := svc.Apply(ctx, user.ID, opt.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Status != types.OptimizationApproved {
		t.Fatalf("status = %s, want APPROVED", applied.Status)
	}
	reloadedPage, err := env.pages.GetByID(ctx, nil, page.ID)
	if err != nil {
		t.Fatalf("reload page: %v", err)
	}
	if !bytes.Equal(reloadedPage.CanvasData, opt.OptimizedDesign) {
		t.Fatalf("page canvas was not replaced with the optimized design")
	}

	// Approved is not re-appliable.
	if _, err := svc.Apply(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on re-apply, got %v", err)
	}
}

func TestOptimizationService_ApplyWithoutDesign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Apply(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrNoDesign) {
		t.Fatalf("expected ErrNoDesign, got %v", err)
	}
}

// failingStatusRepo breaks the second write of the apply transaction.
type failingStatusRepo struct {
	repos.OptimizationRepo
}

func (r failingStatusRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, optID uuid.UUID, status types.OptimizationStatus) error {
	return errors.New("induced status write failure")
}

func TestOptimizationService_ApplyIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	broken := NewOptimizationService(env.db, logger.NewNop(), env.guard, &fakeAssistant{},
		env.users, env.pages, failingStatusRepo{env.opts}, env.refs)
	if _, err := broken.Apply(ctx, user.ID, opt.ID); err == nil {
		t.Fatalf("expected apply to fail")
	}

	// The canvas write inside the same transaction must have rolled back.
	reloadedPage, err := env.pages.GetByID(ctx, nil, page.ID)
	if err != nil {
		t.Fatalf("reload page: %v", err)
	}
	if !bytes.Equal(reloadedPage.CanvasData, testCanvas(t, "#111111")) {
		t.Fatalf("page canvas changed despite failed apply")
	}
	reloadedOpt, err := env.opts.GetByID(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("reload optimization: %v", err)
	}
	if reloadedOpt.Status != types.OptimizationRevised {
		t.Fatalf("status = %s, want REVISED after rollback", reloadedOpt.Status)
	}
}

func TestOptimizationService_RejectIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); err != nil {
		t.Fatalf("optimize: %v", err)
	}
	rejected, err := svc.Reject(ctx, user.ID, opt.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != types.OptimizationRejected {
		t.Fatalf("status = %s, want REJECTED", rejected.Status)
	}

	if _, err := svc.Reject(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on double reject, got %v", err)
	}
	if _, _, err := svc.Refine(ctx, user.ID, opt.ID, "increase the contrast on the button", "color"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on refine of rejected, got %v", err)
	}
	if _, err := svc.Apply(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on apply of rejected, got %v", err)
	}
	if _, err := svc.GenerateCode(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on generate-code of rejected, got %v", err)
	}

	// The record stays rejected; nothing above may resurrect it.
	reloaded, err := env.opts.GetByID(ctx, nil, opt.ID)
	if err != nil {
		t.Fatalf("reload optimization: %v", err)
	}
	if reloaded.Status != types.OptimizationRejected {
		t.Fatalf("status = %s, want REJECTED", reloaded.Status)
	}
	if len(reloaded.GeneratedCode) != 0 {
		t.Fatalf("generated code written on rejected optimization")
	}
}

func TestOptimizationService_ListForPageRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	other := env.createUser(t, "other@example.com")
	project := env.createProject(t, owner.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	if _, err := svc.Create(ctx, owner.ID, page.ID); err != nil {
		t.Fatalf("create: %v", err)
	}

	opts, err := svc.ListForPage(ctx, other.ID, page.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if opts != nil {
		t.Fatalf("forbidden list must return no data")
	}

	opts, err = svc.ListForPage(ctx, owner.ID, page.ID)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("owner sees %d optimizations, want 1", len(opts))
	}
}

func TestOptimizationService_GenerateCodePersistsBundle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "owner@example.com")
	project := env.createProject(t, user.ID)
	page := env.createPage(t, project.ID, testCanvas(t, "#111111"))
	svc := newOptimizationService(env, &fakeAssistant{})

	opt, err := svc.Create(ctx, user.ID, page.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GenerateCode(ctx, user.ID, opt.ID); !errors.Is(err, apperr.ErrNoDesign) {
		t.Fatalf("expected ErrNoDesign before optimize, got %v", err)
	}
	if _, err := svc.Optimize(ctx, user.ID, opt.ID); err != nil {
		t.Fatalf("optimize: %v", err)
	}
	generated, err := svc.GenerateCode(ctx, user.ID, opt.ID)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if len(generated.GeneratedCode) == 0 {
		t.Fatalf("generated code not persisted")
	}
	if generated.Status != types.OptimizationApproved {
		t.Fatalf("status = %s, want APPROVED", generated.Status)
	}
}
