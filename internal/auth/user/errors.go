package user

import (
	"errors"

	apierrors "github.com/sysdb/sysdbd/internal/errors"
)

// Error definitions
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = apierrors.ErrDuplicateUsername
	ErrInvalidCredentials = apierrors.ErrInvalidCredentials
	ErrUserInactive       = apierrors.ErrUserInactive
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPasswordRequired   = errors.New("password is required")
)
