package license

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
)

// Gate validates credentials and entitlement against the directory. It has
// no side effect on the registry; callers own the resulting session state.
type Gate struct {
	directory Directory
	now       func() time.Time
	logger    logger.Interface
}

func NewGate(directory Directory, logger logger.Interface) *Gate {
	return &Gate{
		directory: directory,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the gate's clock. Tests use this to pin expiry checks.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Authenticate runs the four entitlement checks in order, first failure wins:
// email exists, password matches and status is active, license not expired,
// quota remaining. A previously valid session never grandfathers a now
// expired or exhausted license; re-authentication repeats every check.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (*Record, error) {
	record, err := g.directory.Lookup(ctx, NormalizeEmail(email))
	if err != nil {
		if err == ErrRecordNotFound {
			return nil, errors.NewEmailNotFoundError()
		}
		g.logger.Errorw("directory lookup failed", "error", err)
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	if !verifyCredential(password, record.Password) || !record.Status.IsActive() {
		return nil, errors.NewInvalidCredentialsError()
	}

	if !g.now().Before(record.ExpiresAt) {
		return nil, errors.NewLicenseExpiredError()
	}

	if record.RemainingPhotos <= 0 {
		return nil, errors.NewQuotaExhaustedError()
	}

	g.logger.Infow("license authenticated",
		"email", record.Email,
		"tier", record.TierLabel,
		"remaining_photos", record.RemainingPhotos,
	)

	return record, nil
}

// verifyCredential accepts a bcrypt hash or, for legacy flat-file registries,
// a plaintext credential compared in constant time.
func verifyCredential(password, stored string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
