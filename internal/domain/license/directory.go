package license

import (
	"context"
	"errors"
	"strings"
)

// ErrRecordNotFound is returned by Directory implementations when no license
// matches the email.
var ErrRecordNotFound = errors.New("license record not found")

// Directory is the read contract over the external license registry.
// Implementations must be safe for concurrent lookups; the core never
// writes through this interface.
type Directory interface {
	Lookup(ctx context.Context, email string) (*Record, error)
}

// NormalizeEmail canonicalizes an email for directory lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
