package contract

import "fmt"

// Kind distinguishes parsed from pass-through outputs.
type Kind string

const (
	KindFreeText   Kind = "free_text"
	KindStructured Kind = "structured"
)

// Shape is the top-level JSON shape of a structured output.
type Shape string

const (
	ShapeObject Shape = "object"
	ShapeArray  Shape = "array"
)

// Spec declares what a node is expected to produce. The zero value is free text.
type Spec struct {
	Kind     Kind           `yaml:"kind"`
	Shape    Shape          `yaml:"shape,omitempty"`
	Required []string       `yaml:"required,omitempty"`
	Defaults map[string]any `yaml:"defaults,omitempty"`
}

// FreeText returns a spec for output that is passed through unparsed.
func FreeText() Spec {
	return Spec{Kind: KindFreeText}
}

// Structured returns a spec for a JSON object with the given required fields.
func Structured(required ...string) Spec {
	return Spec{Kind: KindStructured, Shape: ShapeObject, Required: required}
}

// StructuredArray returns a spec for a JSON array whose elements are objects
// with the given required fields.
func StructuredArray(required ...string) Spec {
	return Spec{Kind: KindStructured, Shape: ShapeArray, Required: required}
}

// WithDefaults returns a copy of s that fills missing fields from defaults.
func (s Spec) WithDefaults(defaults map[string]any) Spec {
	merged := make(map[string]any, len(s.Defaults)+len(defaults))
	for k, v := range s.Defaults {
		merged[k] = v
	}
	for k, v := range defaults {
		merged[k] = v
	}
	s.Defaults = merged
	return s
}

// IsStructured reports whether output under this spec is parsed.
func (s Spec) IsStructured() bool {
	return s.Kind == KindStructured
}

// Validate checks the spec itself; pipeline builders call it at build time.
func (s Spec) Validate() error {
	switch s.Kind {
	case "", KindFreeText:
		if len(s.Required) > 0 || len(s.Defaults) > 0 {
			return fmt.Errorf("free text output cannot declare fields")
		}
	case KindStructured:
		switch s.Shape {
		case "", ShapeObject, ShapeArray:
		default:
			return fmt.Errorf("unknown output shape %q", s.Shape)
		}
		for field := range s.Defaults {
			if !contains(s.Required, field) {
				return fmt.Errorf("default for %q which is not a required field", field)
			}
		}
	default:
		return fmt.Errorf("unknown output kind %q", s.Kind)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
