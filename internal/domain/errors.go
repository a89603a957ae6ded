// Package domain defines the error taxonomy shared by every layer of the
// report service. Handlers map each kind to an HTTP status.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a domain error.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeProvider      ErrorType = "provider"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypePersistence   ErrorType = "persistence"
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports bad input shape, a missing field or a uniqueness violation.
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

// ConfigurationError reports a missing provider key or an unknown model id.
func ConfigurationError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfiguration, message, err)
}

// ProviderError reports an upstream HTTP failure or malformed upstream JSON.
func ProviderError(message string, err error) *DomainError {
	return NewError(ErrorTypeProvider, message, err)
}

// NotFoundError reports a missing entity.
func NotFoundError(message string, err error) *DomainError {
	return NewError(ErrorTypeNotFound, message, err)
}

// PersistenceError wraps a database failure. Message is safe to show callers;
// the wrapped error is for logs only.
func PersistenceError(message string, err error) *DomainError {
	return NewError(ErrorTypePersistence, message, err)
}

// TypeOf returns the ErrorType of the first DomainError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// Is reports whether err carries a DomainError of the given type.
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// HTTPStatus maps an error to the status code the HTTP surface returns.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConfiguration:
		return http.StatusBadRequest
	case ErrorTypeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be shown to a caller. Only
// validation, configuration and not-found errors append their cause; provider
// and persistence errors expose their message alone since the cause carries
// transport or driver text.
func PublicMessage(err error) string {
	var de *DomainError
	if !errors.As(err, &de) {
		return "internal error"
	}
	if de.Type == ErrorTypePersistence || de.Type == ErrorTypeProvider {
		return de.Message
	}
	if de.Err != nil {
		var inner *DomainError
		if !errors.As(de.Err, &inner) {
			return fmt.Sprintf("%s: %v", de.Message, de.Err)
		}
	}
	return de.Message
}
