// Package cerrors provides typed errors for the completion subsystem.
// Each error carries a stable code so callers can branch on the failure
// class without matching on message text.
package cerrors

import (
	"fmt"
)

// CompletionError is the base interface for all snipcomplete errors
type CompletionError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// TransportError is returned when a suggestion endpoint cannot be reached,
// answers with a non-success status or returns a body that is not valid JSON
type TransportError struct {
	baseError
	Endpoint string
	Status   int // HTTP status, 0 when no response was received
}

// NewTransportError creates a new transport error
func NewTransportError(endpoint string, status int, message string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			code:    "TRANSPORT_ERROR",
			message: message,
			cause:   cause,
		},
		Endpoint: endpoint,
		Status:   status,
	}
}

// ConfigurationError represents errors loading configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ValidationError represents a configuration value that is present but unusable
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    "VALIDATION_ERROR",
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// CatalogError represents failures of the hint service storage
type CatalogError struct {
	baseError
	Op string
}

// NewCatalogError creates a new catalog error
func NewCatalogError(op string, message string, cause error) *CatalogError {
	return &CatalogError{
		baseError: baseError{
			code:    "CATALOG_ERROR",
			message: message,
			cause:   cause,
		},
		Op: op,
	}
}
