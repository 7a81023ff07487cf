package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort is the port other modules use to reach auth functionality.
type AuthPort interface {
	Signup(ctx context.Context, email, password string) (*TokenResponse, error)
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*user.Claims, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{container: container}
}

// Signup registers a user and returns the issued token.
func (a *AuthAdapter) Signup(ctx context.Context, email, password string) (*TokenResponse, error) {
	req := SignupRequest{Email: email, Password: password}
	var resp TokenResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "signup", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	return &resp, nil
}

// Login authenticates a user and returns the issued token.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp TokenResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "login", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	return &resp, nil
}

// ValidateToken validates a bearer token and returns its claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*user.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-token", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		if resp.Error == "token expired" {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	return &user.Claims{UserID: resp.UserID, ExpiresAt: resp.ExpiresAt}, nil
}

// restoreError maps the error text carried over request-reply back to the
// sentinel or typed error the service returned.
func restoreError(err error) error {
	msg := err.Error()
	if ve, ok := validation.Parse(msg); ok {
		return ve
	}
	for _, sentinel := range []error{ErrInvalidCredentials, user.ErrEmailTaken} {
		if errors.Is(err, sentinel) || strings.Contains(msg, sentinel.Error()) {
			return sentinel
		}
	}
	return err
}
