package license

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
)

// =============================================================================
// Test helpers
// =============================================================================

type mapDirectory struct {
	records map[string]*Record
	err     error
}

func (d *mapDirectory) Lookup(_ context.Context, email string) (*Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	rec, ok := d.records[email]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

var gateNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func validRecord() *Record {
	return &Record{
		Email:           "test@medecin.com",
		Password:        "TEST@SD2025#",
		LicenseeName:    "Dr. Test Médecin",
		Structure:       "Centre de Santé Test",
		TierLabel:       "Découverte",
		CreatedAt:       time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		ExpiresAt:       time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		RemainingPhotos: 50,
		Status:          StatusActive,
	}
}

func newTestGate(t *testing.T, rec *Record) *Gate {
	t.Helper()
	dir := &mapDirectory{records: map[string]*Record{}}
	if rec != nil {
		dir.records[rec.Email] = rec
	}
	return NewGate(dir, logger.NewLogger()).WithClock(func() time.Time { return gateNow })
}

// =============================================================================
// Tests
// =============================================================================

func TestAuthenticateSuccess(t *testing.T) {
	gate := newTestGate(t, validRecord())

	rec, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Test Médecin", rec.LicenseeName)
	assert.Equal(t, 50, rec.RemainingPhotos)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	gate := newTestGate(t, validRecord())

	_, err := gate.Authenticate(context.Background(), "  Test@Medecin.COM ", "TEST@SD2025#")
	assert.NoError(t, err)
}

func TestAuthenticateEmailNotFound(t *testing.T) {
	gate := newTestGate(t, validRecord())

	_, err := gate.Authenticate(context.Background(), "unknown@medecin.com", "TEST@SD2025#")
	require.Error(t, err)

	authErr := errors.GetAuthError(err)
	require.NotNil(t, authErr)
	assert.Equal(t, errors.AuthEmailNotFound, authErr.Kind)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	gate := newTestGate(t, validRecord())

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.AuthInvalidCredentials, errors.GetAuthError(err).Kind)
}

func TestAuthenticateInactiveStatus(t *testing.T) {
	rec := validRecord()
	rec.Status = StatusInactive
	gate := newTestGate(t, rec)

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.Error(t, err)
	assert.Equal(t, errors.AuthInvalidCredentials, errors.GetAuthError(err).Kind)
}

func TestAuthenticateExpiredLicense(t *testing.T) {
	rec := validRecord()
	rec.ExpiresAt = gateNow.Add(-time.Hour)
	gate := newTestGate(t, rec)

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.Error(t, err)
	assert.Equal(t, errors.AuthLicenseExpired, errors.GetAuthError(err).Kind)
}

func TestAuthenticateExpiryIsStrict(t *testing.T) {
	// Expiring exactly now is already expired: now must be strictly before.
	rec := validRecord()
	rec.ExpiresAt = gateNow
	gate := newTestGate(t, rec)

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.Error(t, err)
	assert.Equal(t, errors.AuthLicenseExpired, errors.GetAuthError(err).Kind)
}

func TestAuthenticateQuotaExhausted(t *testing.T) {
	rec := validRecord()
	rec.RemainingPhotos = 0
	gate := newTestGate(t, rec)

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.Error(t, err)
	assert.True(t, errors.IsQuotaExhausted(err))
}

func TestAuthenticateCheckOrder(t *testing.T) {
	// Wrong password on an expired, exhausted license reports invalid
	// credentials: the first failing check wins.
	rec := validRecord()
	rec.ExpiresAt = gateNow.Add(-time.Hour)
	rec.RemainingPhotos = 0
	gate := newTestGate(t, rec)

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.AuthInvalidCredentials, errors.GetAuthError(err).Kind)
}

func TestAuthenticateBcryptCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("TEST@SD2025#"), bcrypt.MinCost)
	require.NoError(t, err)

	rec := validRecord()
	rec.Password = string(hash)
	gate := newTestGate(t, rec)

	_, err = gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	assert.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), "test@medecin.com", "wrong")
	assert.Error(t, err)
}

func TestAuthenticateDirectoryFailure(t *testing.T) {
	dir := &mapDirectory{err: assert.AnError}
	gate := NewGate(dir, logger.NewLogger())

	_, err := gate.Authenticate(context.Background(), "test@medecin.com", "TEST@SD2025#")
	require.Error(t, err)
	assert.Nil(t, errors.GetAuthError(err))
}
