package validation

import (
	"fmt"
	"strings"

	"github.com/nyayagpt/nyaya/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates failed checks so a caller can report all of them
// at once. Methods chain.
type Validator struct {
	errs []FieldError
}

// New creates an empty Validator.
func New() *Validator { return &Validator{} }

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) *Validator {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
	return v
}

// Check records message for field unless ok. An error message is used as-is.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// CheckErr records err for field when it is non-nil.
func (v *Validator) CheckErr(field string, err error) *Validator {
	if err != nil {
		v.AddError(field, err.Error())
	}
	return v
}

// Required fails on an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Email fails on a non-empty value that is not a single mail address.
func (v *Validator) Email(field, value string) *Validator {
	return v.Check(value == "" || structValidator().Var(value, "email") == nil, field, "must be a valid email address")
}

// OneOf fails on a non-empty value outside allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
}

// Range fails when value lies outside [lo, hi].
func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	return v.Check(value >= lo && value <= hi, field, fmt.Sprintf("must be between %d and %d (got: %d)", lo, hi, value))
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Errors returns the failed checks in order.
func (v *Validator) Errors() []FieldError { return v.errs }

// Err returns nil or an INVALID_INPUT error listing every failed check under
// the "fields" detail.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	msgs := make([]string, len(v.errs))
	for i, e := range v.errs {
		msgs[i] = e.Field + ": " + e.Message
	}
	appErr := errors.Validation(strings.Join(msgs, "; "))
	appErr.Details = map[string]any{"fields": v.errs}
	return appErr
}
