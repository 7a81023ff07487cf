package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SignupInput is validated before any store access.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput only checks shape; the password policy is not re-applied.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is an issued bearer credential.
type Token struct {
	Value     string
	UserID    string
	ExpiresAt time.Time
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo   user.Repository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo user.Repository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Signup creates an account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Token, error) {
	in.Email = user.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	// The tag's max counts runes; bcrypt's limit is in bytes.
	if len(in.Password) > MaxPasswordBytes {
		return nil, validation.Field("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}

	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, user.ErrEmailTaken
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique index still guards the race between EmailExists and Create.
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(u.ID)
}

// Login verifies credentials and returns a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Token, error) {
	in.Email = user.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u.ID)
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*user.Claims, error) {
	userID, expiresAt, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}
	return &user.Claims{UserID: userID, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) issue(userID string) (*Token, error) {
	value, expiresAt, err := s.jwt.Generate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Token{Value: value, UserID: userID, ExpiresAt: expiresAt}, nil
}
