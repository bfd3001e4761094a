package errors

import (
	stderrors "errors"
	"net/http"
)

// AuthErrorKind identifies why authentication was refused.
type AuthErrorKind string

const (
	AuthEmailNotFound      AuthErrorKind = "email_not_found"
	AuthInvalidCredentials AuthErrorKind = "invalid_credentials"
	AuthLicenseExpired     AuthErrorKind = "license_expired"
	AuthQuotaExhausted     AuthErrorKind = "quota_exhausted"
)

// AuthError represents a license gate refusal. Kind is stable API; the
// message is presentation only.
type AuthError struct {
	*AppError
	Kind AuthErrorKind
	// ShouldLog is false for expected refusals (wrong password) to keep
	// logs quiet; true for states worth operator attention.
	ShouldLog bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

func NewEmailNotFoundError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorType(AuthEmailNotFound),
			Message: "Email non trouvé",
			Code:    http.StatusUnauthorized,
		},
		Kind:      AuthEmailNotFound,
		ShouldLog: false,
	}
}

func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorType(AuthInvalidCredentials),
			Message: "Mot de passe incorrect ou licence inactive",
			Code:    http.StatusUnauthorized,
		},
		Kind:      AuthInvalidCredentials,
		ShouldLog: false,
	}
}

func NewLicenseExpiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorType(AuthLicenseExpired),
			Message: "Licence expirée",
			Code:    http.StatusForbidden,
		},
		Kind:      AuthLicenseExpired,
		ShouldLog: true,
	}
}

// NewQuotaExhaustedError is returned both by the gate (zero quota at login)
// and by the session engine when the last photo allowance is spent. The
// recharge guidance travels as data so the presentation layer owns wording.
func NewQuotaExhaustedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorType(AuthQuotaExhausted),
			Message: "Plus de photos disponibles",
			Code:    http.StatusPaymentRequired,
			Details: "Pack 50 photos : 10.000 FCFA; Pack 100 photos : 18.000 FCFA",
		},
		Kind:      AuthQuotaExhausted,
		ShouldLog: true,
	}
}

// NewSessionClosedError is returned when an operation reaches a session that
// was logged out or evicted. The caller must re-authenticate.
func NewSessionClosedError() *AppError {
	return &AppError{
		Type:    "session_closed",
		Message: "Session terminée, veuillez vous reconnecter",
		Code:    http.StatusUnauthorized,
	}
}

// IsAuthError checks if the error is an AuthError (supports wrapped errors)
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// GetAuthError extracts AuthError from error chain
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// IsQuotaExhausted reports whether err is the entitlement boundary, at any
// wrap depth. Quota exhaustion must stay distinguishable from classifier
// faults.
func IsQuotaExhausted(err error) bool {
	authErr := GetAuthError(err)
	return authErr != nil && authErr.Kind == AuthQuotaExhausted
}
