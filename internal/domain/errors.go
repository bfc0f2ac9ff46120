package domain

import "errors"

var (
	// ErrDuplicateEmail is returned when registering an email that already has an account.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAccountNotFound is returned by account lookups keyed by email or id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials hides whether the email or the password failed.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	// ErrInvalidOrExpiredToken covers unknown, consumed and expired password reset tokens alike.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrEmailDeliveryFailed   = errors.New("email delivery failed")
	// ErrValidation wraps every field-level rejection; the wrapped message names the field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is the generic entity lookup miss.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized is returned for any bearer token problem: missing, malformed, expired, revoked.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
)
