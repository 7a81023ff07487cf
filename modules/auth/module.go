package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// AuthModule provides signup, login and token validation services.
type AuthModule struct {
	service *AuthService
	logger  *zap.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule over repo.
func NewModule(repo user.Repository, jwtConfig JWTConfig, logger *zap.Logger) *AuthModule {
	return NewModuleWithService(NewAuthService(repo, NewPasswordHasher(), NewJWTManager(jwtConfig)), logger)
}

// NewModuleWithService wires a prepared service, letting tests pick a cheap
// bcrypt cost.
func NewModuleWithService(service *AuthService, logger *zap.Logger) *AuthModule {
	return &AuthModule{
		service: service,
		logger:  logger.Named("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	m.logger.Info("module started")
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info("module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
		Details: map[string]any{
			"token_ttl": m.service.jwt.config.TTL.String(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "signup", json.Unmarshal, json.Marshal, m.handleSignup,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info("registered services", zap.Strings("services", []string{"signup", "login", "validate-token"}))
	return nil
}

func (m *AuthModule) handleSignup(ctx context.Context, req SignupRequest, _ *mono.Msg) (TokenResponse, error) {
	token, err := m.service.Signup(ctx, SignupInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return TokenResponse{}, err
	}
	m.logger.Info("user signed up", zap.String("user_id", token.UserID))
	return toTokenResponse(token), nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (TokenResponse, error) {
	token, err := m.service.Login(ctx, LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			m.logger.Info("login rejected")
		}
		return TokenResponse{}, err
	}
	return toTokenResponse(token), nil
}

// handleValidateToken reports failures in the response body, not as an error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{Valid: false, Error: errMsg}, nil
	}

	return ValidateTokenResponse{
		Valid:     true,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func toTokenResponse(t *Token) TokenResponse {
	return TokenResponse{Token: t.Value, UserID: t.UserID, ExpiresAt: t.ExpiresAt}
}
