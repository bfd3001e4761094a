package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ValidationErrorKind identifies why patient intake was refused.
type ValidationErrorKind string

const (
	ValidationMissingField ValidationErrorKind = "missing_field"
	ValidationInvalidPhone ValidationErrorKind = "invalid_phone"
)

// ValidationError represents a patient intake refusal.
type ValidationError struct {
	*AppError
	Kind  ValidationErrorKind
	Field string
}

func (e *ValidationError) Error() string {
	return e.AppError.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.AppError
}

func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Type:    ErrorType(ValidationMissingField),
			Message: "Tous les champs obligatoires doivent être remplis",
			Code:    http.StatusBadRequest,
			Details: field,
		},
		Kind:  ValidationMissingField,
		Field: field,
	}
}

func NewInvalidPhoneError() *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Type:    ErrorType(ValidationInvalidPhone),
			Message: "Le téléphone doit contenir 9 chiffres",
			Code:    http.StatusBadRequest,
			Details: "telephone",
		},
		Kind:  ValidationInvalidPhone,
		Field: "telephone",
	}
}

func GetValidationError(err error) *ValidationError {
	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return vErr
	}
	return nil
}

// ClassifyErrorKind distinguishes transport faults from unparseable replies.
type ClassifyErrorKind string

const (
	ClassifyServiceError ClassifyErrorKind = "service_error"
	ClassifyParseError   ClassifyErrorKind = "parse_error"
)

// ClassifyError represents a failed classifier call for a single photo.
// It is non-fatal to the session: the photo is skipped and no quota is
// consumed.
type ClassifyError struct {
	Kind ClassifyErrorKind
	Err  error
}

func (e *ClassifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}

func NewServiceError(err error) *ClassifyError {
	return &ClassifyError{Kind: ClassifyServiceError, Err: err}
}

func NewParseError(raw string) *ClassifyError {
	return &ClassifyError{Kind: ClassifyParseError, Err: fmt.Errorf("no numeric value in classifier reply %q", raw)}
}

func GetClassifyError(err error) *ClassifyError {
	var cErr *ClassifyError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return nil
}

// AnalysisError wraps a per-photo failure with the index of the photo that
// failed, so batch callers can report which photo to re-submit. The wrapped
// error is either a ClassifyError or the quota-exhausted AuthError.
type AnalysisError struct {
	PhotoIndex int
	Err        error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("photo %d: %v", e.PhotoIndex, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func NewAnalysisError(photoIndex int, err error) *AnalysisError {
	return &AnalysisError{PhotoIndex: photoIndex, Err: err}
}

// HTTPStatus maps any taxonomy error to an HTTP status code.
func HTTPStatus(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	if cErr := GetClassifyError(err); cErr != nil {
		if cErr.Kind == ClassifyParseError {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
