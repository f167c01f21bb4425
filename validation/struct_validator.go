package validation

import (
	stderrors "errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/nyayagpt/nyaya/errors"
)

// Languages lists the accepted output language preferences.
var Languages = []string{"english", "hindi", "both"}

// IsLanguage reports whether s is an accepted language preference.
func IsLanguage(s string) bool { return slices.Contains(Languages, s) }

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return snakeCase(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return IsLanguage(fl.Field().String())
	})
	return v
})

// Validate checks s against its `validate` tags. Failures come back as one
// INVALID_INPUT error naming fields by their JSON names, with every
// failure under the "fields" detail.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), describe(fe))
	}
	return v.Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "language":
		return "must be one of: " + strings.Join(Languages, ", ")
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// snakeCase turns "RiskLevel" into "risk_level".
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
