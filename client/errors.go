package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int                     `json:"-"`
	Code    string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool { return statusOf(err) == http.StatusUnauthorized }

// IsValidation reports whether err is a 400 from the server.
func IsValidation(err error) bool { return statusOf(err) == http.StatusBadRequest }

// IsConflict reports whether err is a 409 from the server.
func IsConflict(err error) bool { return statusOf(err) == http.StatusConflict }
