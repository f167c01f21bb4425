// Package validation provides input validation for API requests, config
// sections and typed model outputs.
//
// # Struct Tag Validation
//
//	type AnalyzeRequest struct {
//	    UserInput string `json:"user_input" validate:"required"`
//	    Language  string `json:"language_preference" validate:"omitempty,language"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New().Required("to", to).Email("to", to)
//	if err := v.Validate(); err != nil { ... }
package validation
