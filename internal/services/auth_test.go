package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

func newTestAuthService(env *testEnv) AuthService {
	return NewAuthService(env.db, logger.NewNop(), env.users, "test-secret", time.Hour)
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	user, err := svc.Signup(ctx, "  Dana@Example.COM ", "hunter22", "Dana", types.SkillIntermediate)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "dana@example.com" {
		t.Fatalf("email = %q, want normalized dana@example.com", user.Email)
	}
	if user.Password == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}

	token, loggedIn, err := svc.Login(ctx, "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
	if token == "" {
		t.Fatalf("empty access token")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("set context from token: %v", err)
	}
	if got := requestdata.UserID(authedCtx); got != user.ID {
		t.Fatalf("context user = %s, want %s", got, user.ID)
	}
}

func TestAuthService_DuplicateSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	if _, err := svc.Signup(ctx, "dana@example.com", "hunter22", "Dana", ""); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(ctx, "DANA@example.com", "another7", "Dana Again", "")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	if _, err := svc.Signup(ctx, "not-an-email", "hunter22", "Dana", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad email, got %v", err)
	}
	if _, err := svc.Signup(ctx, "dana@example.com", "short", "Dana", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short password, got %v", err)
	}
	if _, err := svc.Signup(ctx, "dana@example.com", "hunter22", "Dana", types.SkillLevel("WIZARD")); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad skill level, got %v", err)
	}
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	if _, err := svc.Signup(ctx, "dana@example.com", "hunter22", "Dana", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "dana@example.com", "wrongpass"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestAuthService_CheckEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	exists, err := svc.CheckEmail(ctx, "dana@example.com")
	if err != nil {
		t.Fatalf("check email: %v", err)
	}
	if exists {
		t.Fatalf("email should not exist yet")
	}
	if _, err := svc.Signup(ctx, "dana@example.com", "hunter22", "Dana", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	exists, err = svc.CheckEmail(ctx, "DANA@example.com")
	if err != nil {
		t.Fatalf("check email: %v", err)
	}
	if !exists {
		t.Fatalf("email lookup should be case-insensitive")
	}
}

func TestAuthService_RejectsTamperedToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newTestAuthService(env)

	if _, err := svc.Signup(ctx, "dana@example.com", "hunter22", "Dana", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, _, err := svc.Login(ctx, "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	otherSvc := NewAuthService(env.db, logger.NewNop(), env.users, "different-secret", time.Hour)
	if _, err := otherSvc.SetContextFromToken(ctx, token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, token+"x"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mangled token, got %v", err)
	}
}
