package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	// A single connection keeps the in-memory database alive for the whole
	// test; a second connection would see an empty database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&types.User{},
		&types.Project{},
		&types.Page{},
		&types.Optimization{},
		&types.Refinement{},
		&types.Comment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	users    repos.UserRepo
	projects repos.ProjectRepo
	pages    repos.PageRepo
	opts     repos.OptimizationRepo
	refs     repos.RefinementRepo
	comments repos.CommentRepo
	guard    Guard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()
	env := &testEnv{
		db:       db,
		users:    repos.NewUserRepo(db, log),
		projects: repos.NewProjectRepo(db, log),
		pages:    repos.NewPageRepo(db, log),
		opts:     repos.NewOptimizationRepo(db, log),
		refs:     repos.NewRefinementRepo(db, log),
		comments: repos.NewCommentRepo(db, log),
	}
	env.guard = NewGuard(log, env.users, env.projects, env.pages, env.opts, env.comments)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *types.User {
	t.Helper()
	user := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   "x",
		Name:       "Test User",
		SkillLevel: types.SkillBeginner,
	}
	if _, err := e.users.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createProject(t *testing.T, userID uuid.UUID) *types.Project {
	t.Helper()
	project := &types.Project{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Test Project",
		Status: types.ProjectDraft,
	}
	if _, err := e.projects.Create(context.Background(), nil, project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func (e *testEnv) createPage(t *testing.T, projectID uuid.UUID, canvas datatypes.JSON) *types.Page {
	t.Helper()
	page := &types.Page{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Name:       "Home",
		CanvasData: canvas,
	}
	if _, err := e.pages.Create(context.Background(), nil, page); err != nil {
		t.Fatalf("create page: %v", err)
	}
	return page
}

func testCanvas(t *testing.T, background string) datatypes.JSON {
	t.Helper()
	doc := types.CanvasDocument{
		Version:    "1.0",
		Background: background,
		Objects: []types.CanvasObject{
			{Type: "rect", Left: 0, Top: 0, Width: 100, Height: 40, Fill: "#333333"},
			{Type: "text", Left: 8, Top: 8, Width: 84, Height: 24, Text: "Sign up", FontSize: 14},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal canvas: %v", err)
	}
	return datatypes.JSON(raw)
}
