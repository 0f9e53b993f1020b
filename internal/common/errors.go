// Package common defines shared constants and sentinel errors used across
// client and server layers of skillhub. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed access token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Refresh token lifecycle errors.
	ErrTokenNotFound             = errors.New("refresh token not found")
	ErrRefreshTokenExpired       = errors.New("refresh token expired, please login again")
	ErrInvalidTokenConfiguration = errors.New("invalid refresh token configuration")
	ErrSessionConflict           = errors.New("session changed concurrently, please retry")

	// Principal errors.
	ErrAccountInactive = errors.New("account is inactive")
	ErrAlreadyExists   = errors.New("already exists")
)
