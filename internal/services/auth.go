package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/requestdata"
	"github.com/yungbote/pixelcraft-backend/internal/types"
	"github.com/yungbote/pixelcraft-backend/internal/utils"
)

type AuthService interface {
	Signup(ctx context.Context, email, password, name string, skill types.SkillLevel) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	// SetContextFromToken validates a bearer token and attaches the
	// authenticated identity to the context for downstream handlers.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Signup(ctx context.Context, email, password, name string, skill types.SkillLevel) (*types.User, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}
	if skill == "" {
		skill = types.SkillBeginner
	}
	if !skill.Valid() {
		return nil, fmt.Errorf("%w: invalid skill level %q", apperr.ErrInvalidArgument, skill)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("Failed to check user email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: User already exists", apperr.ErrAlreadyExists)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   hashed,
		Name:       name,
		SkillLevel: skill,
	}
	if _, err := as.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("Failed to create user: %w", err)
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", apperr.ErrInvalidArgument)
	}
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("Error retrieving user by email: %w", err)
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("Generate access token error: %w", err)
	}
	return token, user, nil
}

func (as *authService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("%w: email is required", apperr.ErrInvalidArgument)
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return false, fmt.Errorf("Failed to check user email: %w", err)
	}
	return exists, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, fmt.Errorf("%w: invalid claims", apperr.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid subject", apperr.ErrUnauthorized)
	}
	// The token proves identity only; ownership of anything is re-checked
	// against the store on every request.
	if _, err := as.userRepo.GetByID(ctx, nil, userID); err != nil {
		return ctx, fmt.Errorf("%w: unknown user", apperr.ErrUnauthorized)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
