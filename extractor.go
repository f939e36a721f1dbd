package toolhub

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Extractor provides schema derivation and typed decoding for struct type T
// without binding to the Tool interface. Use it in custom orchestrators that
// need schema export and validated decoding but not the standard dispatch
// pipeline.
type Extractor[T any] struct {
	schema *Schema
}

// NewExtractor creates an Extractor for type T. When strict is true, the
// derived schema has additionalProperties: false for all objects and all
// properties required.
func NewExtractor[T any](strict bool) (*Extractor[T], error) {
	schema, err := schemaFor[T](strict)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{schema: schema}, nil
}

// Schema returns the derived schema.
func (e *Extractor[T]) Schema() *Schema { return e.schema }

// ParseAndValidate unmarshals argsJSON, validates and coerces it against the
// schema, and decodes into T. Returns a ValidationError for invalid JSON or
// schema failures so the caller can pass the message to the LLM for
// self-correction.
func (e *Extractor[T]) ParseAndValidate(argsJSON []byte) (T, error) {
	var zero T
	var raw map[string]any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		return zero, &ValidationError{Reason: "json parse error: " + err.Error()}
	}
	args, err := ValidateInput(e.schema, raw)
	if err != nil {
		return zero, err
	}
	return e.Decode(args)
}

// Decode converts already-validated arguments into T and runs the
// Validatable layer if T implements it.
func (e *Extractor[T]) Decode(args Args) (T, error) {
	var zero T
	data, err := json.Marshal(args)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, &ValidationError{Reason: "decode error: " + err.Error()}
	}
	if err := runCustomValidation(out); err != nil {
		if IsValidationError(err) {
			return zero, err
		}
		return zero, &ValidationError{Reason: err.Error()}
	}
	return out, nil
}

// runCustomValidation runs Validatable.Validate() on args; if args does not
// implement Validatable, it tries &args for value types (pointer receiver).
// Never calls Validate twice for the same receiver.
func runCustomValidation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}

// encodeArgs marshals a typed result into the Args map the dispatch pipeline
// carries.
func encodeArgs(v any) (Args, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	var out Args
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("tool result is not a JSON object: %w", err)
	}
	return out, nil
}
