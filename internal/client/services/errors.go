package services

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be a non-negative finite number")
	ErrInvalidMultiplier = errors.New("multiplier must be a positive finite number")
	ErrNoSession         = errors.New("no active user")
	ErrWrongScreen       = errors.New("operation not available on the current screen")
	ErrAdminRequired     = errors.New("admin role required")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotLoggedIn       = errors.New("staff login required")
	ErrValidation        = errors.New("validation failed")
)
