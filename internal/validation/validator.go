// Package validation wraps a shared go-playground validator and translates
// its failures into field-level validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"philcali.me/foodgram/internal/exceptions"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		if err := validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("failed to register username validation: %v", err))
		}
	})
	return validate
}

// ValidateStruct returns nil or an *exceptions.ValidationError keyed by the
// JSON name of each failing field.
func ValidateStruct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return exceptions.InvalidInput(err.Error())
	}
	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields[fieldPath(fe)] = message(fe)
	}
	return &exceptions.ValidationError{Fields: fields}
}

func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s item(s).", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	case "unique":
		return "Must not contain duplicates."
	case "email":
		return "Must be a valid email address."
	case "username":
		return "May only contain letters, digits and the characters . @ + - _"
	default:
		return fmt.Sprintf("Failed on the %s rule.", fe.Tag())
	}
}
