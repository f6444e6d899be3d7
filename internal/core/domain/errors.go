package domain

import "errors"

// Authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is blocked")
	ErrMalformedToken     = errors.New("malformed token")
	ErrExpiredToken       = errors.New("expired token")
	ErrUnknownSubject     = errors.New("token subject does not exist")
)

// Authorization and lookup failures.
var (
	ErrForbidden             = errors.New("access forbidden")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrCommentNotFound       = errors.New("comment not found")
	// ErrIdempotencyInProgress is returned while another request holds the
	// same Idempotency-Key.
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
)

// IsTokenError reports whether err means the bearer token can no longer be used
// and the client has to log in again.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUnknownSubject)
}

// ErrInvalidInput wraps field-level validation failures detected by the services.
var ErrInvalidInput = errors.New("invalid input")
