package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("already exists")
	ErrInvalidAllocation   = errors.New("invalid allocation")
	ErrReadOnlyTaxKind     = errors.New("tax kind is read-only")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrProfileInactive     = errors.New("recurring invoice profile is not active")
)
