package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/validation"
)

// Parsed is the checked form of one node's output.
type Parsed struct {
	Node string `json:"node"`
	// Raw is the output text exactly as the executor returned it.
	Raw string `json:"-"`
	// Text is Raw with code fences removed. For free text it equals Raw.
	Text string `json:"-"`
	// Objects holds the decoded objects: one for ShapeObject, one per element
	// for ShapeArray. Nil for free text.
	Objects []map[string]any `json:"objects,omitempty"`
	// Defaulted lists the fields that were missing and filled from defaults,
	// as "field" or "[i].field" for arrays.
	Defaulted []string `json:"defaulted,omitempty"`
}

// Object returns the first decoded object, or nil.
func (p *Parsed) Object() map[string]any {
	if p == nil || len(p.Objects) == 0 {
		return nil
	}
	return p.Objects[0]
}

// Field returns a field of the first object rendered as a string.
func (p *Parsed) Field(name string) string {
	obj := p.Object()
	if obj == nil {
		return ""
	}
	return stringify(obj[name])
}

// Degraded reports whether any default was applied.
func (p *Parsed) Degraded() bool {
	return p != nil && len(p.Defaulted) > 0
}

// Parse checks raw output from node against spec. Free text is passed through.
// Structured output that is not valid JSON of the declared shape, or that lacks
// a required field without a default, yields a CONTRACT_VIOLATION error.
func Parse(node, raw string, spec Spec) (*Parsed, error) {
	p := &Parsed{Node: node, Raw: raw, Text: raw}
	if !spec.IsStructured() {
		return p, nil
	}

	p.Text = StripFences(raw)
	if p.Text == "" {
		return nil, errors.ContractViolation(node, raw, "empty output")
	}

	switch spec.Shape {
	case ShapeArray:
		var items []map[string]any
		if err := json.Unmarshal([]byte(p.Text), &items); err != nil {
			return nil, errors.ContractViolation(node, raw, "expected a JSON array of objects: "+err.Error())
		}
		p.Objects = items
	default:
		var obj map[string]any
		if err := json.Unmarshal([]byte(p.Text), &obj); err != nil {
			return nil, errors.ContractViolation(node, raw, "expected a JSON object: "+err.Error())
		}
		if obj == nil {
			return nil, errors.ContractViolation(node, raw, "expected a JSON object, got null")
		}
		p.Objects = []map[string]any{obj}
	}

	var missing []string
	for i, obj := range p.Objects {
		prefix := ""
		if spec.Shape == ShapeArray {
			prefix = fmt.Sprintf("[%d].", i)
		}
		for _, field := range spec.Required {
			if v, ok := obj[field]; ok && v != nil {
				continue
			}
			def, ok := spec.Defaults[field]
			if !ok {
				missing = append(missing, prefix+field)
				continue
			}
			obj[field] = def
			p.Defaulted = append(p.Defaulted, prefix+field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.ContractViolation(node, raw, "missing required fields: "+strings.Join(missing, ", "))
	}

	return p, nil
}

// Report logs a degradation warning when p had defaults applied.
func Report(log *logger.Logger, p *Parsed) {
	if !p.Degraded() {
		return
	}
	fields := append([]string(nil), p.Defaulted...)
	sort.Strings(fields)
	log.Warn("structured output degraded, defaults applied", logger.Fields(
		logger.FieldNode, p.Node,
		"defaulted", strings.Join(fields, ","),
	))
}

// Decode strips fences from raw, decodes the JSON into T and validates it
// with the struct's validate tags.
func Decode[T any](node, raw string) (T, error) {
	var out T
	text := StripFences(raw)
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, errors.ContractViolation(node, raw, "decode: "+err.Error())
	}
	if err := validation.Validate(&out); err != nil {
		return out, errors.ContractViolation(node, raw, err.Error()).WithCause(err)
	}
	return out, nil
}

// Artifact returns the raw output of the terminal node, unparsed.
func Artifact(outputs map[string]string, terminal string) (string, bool) {
	out, ok := outputs[terminal]
	return out, ok
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, "\n")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
