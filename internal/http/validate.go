package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"hostel-portal/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validate        = newValidator()
	alphaSpaceRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*$`)
	digitsRegex     = regexp.MustCompile(`^[0-9]+$`)
	// Application numbers travel as a single path segment.
	pathSafeRegex   = regexp.MustCompile(`^[^\s/?#%]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pathsafe", func(fl validator.FieldLevel) bool {
		return pathSafeRegex.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the struct's validate tags and reports the first
// failure as an ErrInvalid naming the JSON field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalid, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "alphaspace":
		return field + " may only contain letters and spaces"
	case "digits":
		return field + " must contain only digits"
	case "pathsafe":
		return field + " must not contain spaces or any of / ? # %"
	case "datetime":
		return fmt.Sprintf("%s must be a date (%s)", field, fe.Param())
	}
	return field + " is invalid"
}
