package toolhub

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validatable is implemented by argument structs that need custom business
// validation. Called after schema validation and decoding.
type Validatable interface {
	Validate() error
}

// ValidateInput validates and coerces a raw argument map against the schema.
// Declared fields are coerced to their semantic types, absent fields receive
// defaults, required fields without defaults fail, and unknown fields are
// dropped (permissive) or rejected (strict). Validation is pure: the input
// map is never mutated. A nil schema accepts anything unchanged.
func ValidateInput(s *Schema, raw map[string]any) (Args, error) {
	if s == nil {
		return Args(raw), nil
	}
	coerced, err := validateMap(s, raw, "")
	if err != nil {
		return nil, err
	}
	if s.resolved != nil {
		if err := s.resolved.Validate(coerced); err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
	}
	return Args(coerced), nil
}

// ValidateOutput checks a handler's return value against the tool's declared
// output schema. Mismatches are a tool defect, reported as
// OutputContractError rather than ValidationError.
func ValidateOutput(tool string, s *Schema, out Args) (Args, error) {
	if s == nil {
		return out, nil
	}
	checked, err := ValidateInput(s, map[string]any(out))
	if err != nil {
		return nil, &OutputContractError{Tool: tool, Err: err}
	}
	return checked, nil
}

// validateCustom runs the Validatable layer if args implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

func validateMap(s *Schema, raw map[string]any, path string) (map[string]any, error) {
	out := make(map[string]any, s.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		name := fieldPath(path, f.Name)
		v, present := raw[f.Name]
		if !present {
			if f.Default != nil {
				v = f.Default
			} else if f.Required {
				return nil, &ValidationError{Field: name, Expected: f.Type, Reason: "required field is missing"}
			} else {
				continue
			}
		}
		coerced, err := coerceValue(f, v, name)
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	if s.strict {
		for key := range raw {
			if _, declared := s.fields.Get(key); !declared {
				return nil, &ValidationError{Field: fieldPath(path, key), Reason: "unknown field not allowed by strict schema"}
			}
		}
	}
	return out, nil
}

func fieldPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// coerceValue converts v to the field's semantic type, or fails with a
// ValidationError naming the field. Null is treated as absent-like and only
// passes for unconstrained fields.
func coerceValue(f Field, v any, path string) (any, error) {
	if v == nil && f.Type != TypeAny {
		return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
	}
	var (
		out any
		err error
	)
	switch f.Type {
	case TypeAny:
		out = v
	case TypeString:
		out, err = coerceString(f, v, path)
	case TypeInteger:
		out, err = coerceInteger(f, v, path)
	case TypeNumber:
		out, err = coerceNumber(f, v, path)
	case TypeBoolean:
		out, err = coerceBool(f, v, path)
	case TypeArray:
		out, err = coerceArray(f, v, path)
	case TypeObject:
		out, err = coerceObject(f, v, path)
	default:
		return nil, &ValidationError{Field: path, Expected: f.Type, Received: v, Reason: "unsupported field type"}
	}
	if err != nil {
		return nil, err
	}
	if len(f.Enum) > 0 {
		if err := checkEnum(f, out, path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerceString(f Field, v any, path string) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int:
		return strconv.Itoa(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
}

func coerceInteger(f Field, v any, path string) (any, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) {
			return nil, &ValidationError{Field: path, Expected: f.Type, Received: v, Reason: "number has a fractional part"}
		}
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
		}
		return n, nil
	}
	return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
}

func coerceNumber(f Field, v any, path string) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
		}
		return n, nil
	}
	return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
}

var truthy = map[string]bool{"1": true, "true": true, "yes": true, "on": true}
var falsy = map[string]bool{"0": true, "false": true, "no": true, "off": true}

func coerceBool(f Field, v any, path string) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		key := strings.ToLower(strings.TrimSpace(t))
		if truthy[key] {
			return true, nil
		}
		if falsy[key] {
			return false, nil
		}
	}
	return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
}

func coerceArray(f Field, v any, path string) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
	}
	if f.Elem == nil {
		return append([]any(nil), items...), nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		coerced, err := coerceValue(*f.Elem, item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func coerceObject(f Field, v any, path string) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		if args, isArgs := v.(Args); isArgs {
			m = map[string]any(args)
		} else {
			return nil, &ValidationError{Field: path, Expected: f.Type, Received: v}
		}
	}
	if f.Object == nil {
		return m, nil
	}
	return validateMap(f.Object, m, path)
}

// checkEnum verifies membership after coercion. Numeric members are compared
// by value so a JSON-decoded 2.0 matches a coerced int64(2).
func checkEnum(f Field, v any, path string) error {
	for _, member := range f.Enum {
		if enumEqual(member, v) {
			return nil
		}
	}
	return &ValidationError{Field: path, Expected: f.Type, Received: v, Reason: fmt.Sprintf("value %v is not one of the allowed enum members", v)}
}

func enumEqual(member, v any) bool {
	if member == v {
		return true
	}
	mf, mok := asFloat(member)
	vf, vok := asFloat(v)
	return mok && vok && mf == vf
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}
