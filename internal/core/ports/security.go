package ports

import "time"

// PasswordHasher is a slow, salted, one-way hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A non-nil error means the
	// stored hash itself is corrupt.
	Verify(password, hash string) (bool, error)
}

// TokenManager issues and verifies stateless signed tokens.
type TokenManager interface {
	// Issue returns a token bound to subject that expires after ttl, together
	// with the absolute expiry.
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
	// Verify returns the token subject, or domain.ErrMalformedToken /
	// domain.ErrExpiredToken.
	Verify(token string) (string, error)
}
