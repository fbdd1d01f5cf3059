// Package validators checks request payloads before they reach the store.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Validator implements echo.Validator on top of go-playground/validator.
// Failures come back as a field-scoped apperrors validation error keyed by
// JSON field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator with the project's custom rules registered
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate validates a struct.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := apperrors.FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), message(fe))
	}
	return apperrors.Validation(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	default:
		return "is invalid"
	}
}
