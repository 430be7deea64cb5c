package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Workflow errors
var (
	ErrCommentRequired = errors.New("comment required")
	ErrWriteConflict   = errors.New("write conflict")
	ErrTransient       = errors.New("transient failure, retry later")
)

// User errors
var (
	ErrUserNotFound      = fmt.Errorf("user: %w", ErrNotFound)
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", ErrDuplicateEntry)
	ErrInvalidSupervisor = fmt.Errorf("%w: supervisor must reference a user with role supervisor", ErrInvalidInput)
)

// Bill errors
var (
	ErrBillNotFound      = fmt.Errorf("bill: %w", ErrNotFound)
	ErrInvalidBillStatus = fmt.Errorf("%w: unknown bill status", ErrInvalidInput)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than zero with at most 2 decimal places", ErrInvalidInput)
	ErrTitleRequired     = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrCorruptHistory    = errors.New("bill history is inconsistent")
)
