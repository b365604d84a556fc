package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate is configured once and read-only afterwards.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match the persisted field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		return !IsAllDigits(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register notnumeric validation: %v", err))
	}

	return v
}

// IsAllDigits reports whether s is non-empty and made only of digits.
func IsAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// validateStruct runs the struct tags of v and converts the first failure into
// a *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: describeFieldError(fe)}
	}
	return fmt.Errorf("validate %T: %w", v, err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notnumeric":
		return "cannot be only numbers"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", snakeCase(fe.Param()))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
