package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"glycoanalyzer/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates a struct and maps the first failure to the intake
// error taxonomy: a failed `required` is a missing field; any other failed
// rule on a phone field is an invalid phone; the rest surface as bad requests.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewBadRequestError("validation failed", err.Error())
	}

	fe := validationErrors[0]
	field := fe.Field()
	switch {
	case fe.Tag() == "required":
		return errors.NewMissingFieldError(field)
	case strings.Contains(strings.ToLower(field), "telephone") || strings.Contains(strings.ToLower(field), "phone"):
		return errors.NewInvalidPhoneError()
	default:
		return errors.NewBadRequestError("validation failed", field+" failed rule "+fe.Tag())
	}
}
