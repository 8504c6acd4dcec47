package errors

import (
	"errors"
	"fmt"
)

// Re-export standard errors package functions
var (
	As     = errors.As
	Is     = errors.Is
	New    = errors.New
	Unwrap = errors.Unwrap
)

// Define domain-specific error types
var (
	// General errors
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrForbidden        = errors.New("operation not permitted")

	// Store errors
	ErrParentMissing = errors.New("required parent entity does not exist")
	ErrOutOfMemory   = errors.New("out of memory")

	// Wire protocol errors
	ErrProtocol = errors.New("protocol error")

	// Query pipeline errors
	ErrSemantic      = errors.New("semantic error")
	ErrNotImplemented = errors.New("not implemented")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrDuplicateUsername  = errors.New("username already exists")
)

// Wrap wraps an error with additional context
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// WrapWithCode wraps an error with a specific error code
func WrapWithCode(err error, code error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	wrappedErr := fmt.Errorf(format+": %w", append(args, err)...)
	return fmt.Errorf("%w: %w", code, wrappedErr)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) error {
	if err == nil {
		return nil
	}

	errorCodes := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidParameter,
		ErrForbidden,
		ErrParentMissing,
		ErrOutOfMemory,
		ErrProtocol,
		ErrSemantic,
		ErrNotImplemented,
		ErrInvalidCredentials,
		ErrTokenExpired,
		ErrInvalidToken,
		ErrUserInactive,
		ErrDuplicateUsername,
	}

	for _, code := range errorCodes {
		if errors.Is(err, code) {
			return code
		}
	}

	return nil
}

// GetErrorCodeString returns the string representation of the error code
func GetErrorCodeString(err error) string {
	if err == nil {
		return "UNKNOWN_ERROR"
	}

	code := GetErrorCode(err)
	switch code {
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrInvalidParameter:
		return "INVALID_PARAMETER"
	case ErrForbidden:
		return "FORBIDDEN"
	case ErrParentMissing:
		return "PARENT_MISSING"
	case ErrOutOfMemory:
		return "OUT_OF_MEMORY"
	case ErrProtocol:
		return "PROTOCOL_ERROR"
	case ErrSemantic:
		return "SEMANTIC_ERROR"
	case ErrNotImplemented:
		return "NOT_IMPLEMENTED"
	case ErrInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case ErrTokenExpired:
		return "TOKEN_EXPIRED"
	case ErrInvalidToken:
		return "INVALID_TOKEN"
	case ErrUserInactive:
		return "USER_INACTIVE"
	case ErrDuplicateUsername:
		return "DUPLICATE_USERNAME"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
