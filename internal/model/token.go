package model

import "errors"

// Error codes for authentication failures, distinguished so clients can
// tell an expired session from a forged or malformed token.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	// ErrTokenExpired is returned when a token's expiry is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for signature mismatches and malformed tokens.
	ErrTokenInvalid = errors.New("token invalid")
)
