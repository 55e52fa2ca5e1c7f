package client

import "github.com/minerops/launchspec/internal/spec"

// ValidationResult represents the server's answer to a validate request.
type ValidationResult struct {
	OK         bool             `json:"ok"`
	Violations []spec.Violation `json:"violations,omitempty"`
}

// RegisterResult represents a successful register/update response.
type RegisterResult struct {
	OK       bool   `json:"ok"`
	Name     string `json:"name"`
	Revision string `json:"revision"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
