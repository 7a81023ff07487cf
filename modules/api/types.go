package api

import "github.com/NathanHodgkiss447/smart-tasks/domain/validation"

// CredentialsRequest is the signup and login body.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// SuccessResponse acknowledges a delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is served at /health.
type HealthResponse struct {
	OK      bool                    `json:"ok"`
	Modules map[string]ModuleHealth `json:"modules,omitempty"`
}

// ModuleHealth is one module's entry in HealthResponse.
type ModuleHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}
