package toolhub

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/jsonschema-go/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldType is the semantic type of a schema field. The validator coerces
// raw input to these types before a tool runs.
type FieldType string

const (
	// TypeAny disables coercion for the field; any JSON value passes.
	TypeAny     FieldType = ""
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// Field declares one named, typed schema field.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Required fields must be present in the input unless Default is set.
	Required bool
	// Default is injected when the field is absent. Coerced to Type during
	// validation like any other value.
	Default any
	// Enum restricts the coerced value to one of the listed members.
	Enum []any
	// Elem declares the element type for TypeArray fields. Nil means
	// elements are unconstrained.
	Elem *Field
	// Object declares the nested schema for TypeObject fields. Nil means
	// the object is free-form.
	Object *Schema
}

// Schema is an ordered set of named, typed fields describing a tool's input
// or output. Build one with NewSchema for explicit declarations,
// SchemaFromJSON for raw JSON Schema maps (dynamic imports), or let NewTool
// derive one from a Go struct type.
type Schema struct {
	fields      *orderedmap.OrderedMap[string, Field]
	strict      bool
	raw         map[string]any
	resolved    *jsonschema.Resolved
	fingerprint uint64
}

// NewSchema builds a permissive Schema (unknown input fields are ignored)
// from explicit field declarations. Field order is preserved.
func NewSchema(fields ...Field) (*Schema, error) {
	return newSchema(false, fields)
}

// NewStrictSchema builds a Schema that rejects unknown input fields
// (additionalProperties: false).
func NewStrictSchema(fields ...Field) (*Schema, error) {
	return newSchema(true, fields)
}

func newSchema(strict bool, fields []Field) (*Schema, error) {
	om := orderedmap.New[string, Field]()
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("schema field must have a name")
		}
		if _, present := om.Get(f.Name); present {
			return nil, fmt.Errorf("duplicate schema field %q", f.Name)
		}
		om.Set(f.Name, f)
	}
	s := &Schema{fields: om, strict: strict}
	s.raw = s.buildJSONSchema()
	return s, s.finish()
}

// finish compiles the raw JSON Schema map and computes the fingerprint.
func (s *Schema) finish() error {
	data, err := json.Marshal(s.raw)
	if err != nil {
		return err
	}
	s.fingerprint = xxhash.Sum64(data)
	resolved, err := compileRawSchema(s.raw)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	s.resolved = resolved
	return nil
}

// Fields returns the declared fields in insertion order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, s.fields.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	return s.fields.Get(name)
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return s.fields.Len() }

// IsStrict reports whether unknown input fields are rejected.
func (s *Schema) IsStrict() bool { return s.strict }

// Fingerprint is a stable hash of the schema's JSON form. The Dispatcher
// mixes it into cache keys so a tool whose contract changes mid-process
// never serves stale-shaped cached results.
func (s *Schema) Fingerprint() uint64 { return s.fingerprint }

// JSONSchema returns the schema as a JSON Schema map compatible with LLM
// tool definitions. The returned map is a deep copy; callers may mutate it.
func (s *Schema) JSONSchema() map[string]any {
	return deepCopyMap(s.raw)
}

// buildJSONSchema synthesizes the JSON Schema map from the field model.
func (s *Schema) buildJSONSchema() map[string]any {
	props := make(map[string]any, s.fields.Len())
	var required []any
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		props[f.Name] = fieldJSONSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	if s.strict {
		m["additionalProperties"] = false
	}
	return m
}

func fieldJSONSchema(f Field) map[string]any {
	m := map[string]any{}
	if f.Type != TypeAny {
		m["type"] = string(f.Type)
	}
	if f.Description != "" {
		m["description"] = f.Description
	}
	if len(f.Enum) > 0 {
		m["enum"] = append([]any(nil), f.Enum...)
	}
	if f.Default != nil {
		m["default"] = f.Default
	}
	if f.Type == TypeArray && f.Elem != nil {
		m["items"] = fieldJSONSchema(*f.Elem)
	}
	if f.Type == TypeObject && f.Object != nil {
		nested := f.Object.buildJSONSchema()
		for k, v := range nested {
			m[k] = v
		}
	}
	return m
}

// SchemaFromJSON converts a raw JSON Schema object map (as discovered from
// an external tool server) into a Schema. Properties are ordered by name for
// determinism since JSON object order is not preserved by decoding.
// Unsupported constructs are kept in the compiled layer but degrade to
// unconstrained fields in the coercion layer.
func SchemaFromJSON(m map[string]any) (*Schema, error) {
	if m == nil {
		return nil, errors.New("schema map must not be nil")
	}
	m = deepCopyMap(m)
	stripSchemaIDs(m)
	fields, err := fieldsFromJSON(m, m)
	if err != nil {
		return nil, err
	}
	strict := false
	if ap, ok := m["additionalProperties"].(bool); ok && !ap {
		strict = true
	}
	om := orderedmap.New[string, Field]()
	for _, f := range fields {
		om.Set(f.Name, f)
	}
	s := &Schema{fields: om, strict: strict, raw: m}
	return s, s.finish()
}

// fieldsFromJSON extracts the field model from a JSON Schema object node.
// root carries $defs for local ref resolution.
func fieldsFromJSON(node, root map[string]any) ([]Field, error) {
	props, _ := node["properties"].(map[string]any)
	if props == nil {
		return nil, nil
	}
	required := map[string]bool{}
	switch req := node["required"].(type) {
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	case []string:
		for _, name := range req {
			required[name] = true
		}
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema property %q is not an object", name)
		}
		f, err := fieldFromJSON(name, prop, root)
		if err != nil {
			return nil, err
		}
		f.Required = required[name]
		fields = append(fields, f)
	}
	return fields, nil
}

func fieldFromJSON(name string, prop, root map[string]any) (Field, error) {
	prop = resolveLocalRef(prop, root)
	f := Field{Name: name}
	if desc, ok := prop["description"].(string); ok {
		f.Description = desc
	}
	if enum, ok := prop["enum"].([]any); ok {
		f.Enum = append([]any(nil), enum...)
	}
	if def, present := prop["default"]; present {
		f.Default = def
	}
	typ, _ := prop["type"].(string)
	if typ == "" && prop["properties"] != nil {
		typ = "object"
	}
	switch FieldType(typ) {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		f.Type = FieldType(typ)
	case TypeArray:
		f.Type = TypeArray
		if items, ok := prop["items"].(map[string]any); ok {
			elem, err := fieldFromJSON(name+"[]", items, root)
			if err != nil {
				return Field{}, err
			}
			f.Elem = &elem
		}
	case TypeObject:
		f.Type = TypeObject
		if prop["properties"] != nil {
			nested, err := SchemaFromJSON(prop)
			if err != nil {
				return Field{}, fmt.Errorf("nested schema for field %q: %w", name, err)
			}
			f.Object = nested
		}
	default:
		f.Type = TypeAny
	}
	return f, nil
}

// resolveLocalRef follows a single-level "#/$defs/X" or "#/definitions/X"
// reference against the root schema. Unresolvable refs are returned as-is
// and degrade to an unconstrained field.
func resolveLocalRef(prop, root map[string]any) map[string]any {
	ref, ok := prop["$ref"].(string)
	if !ok || root == nil {
		return prop
	}
	for _, section := range []string{"$defs", "definitions"} {
		prefix := "#/" + section + "/"
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		defs, ok := root[section].(map[string]any)
		if !ok {
			continue
		}
		if target, ok := defs[strings.TrimPrefix(ref, prefix)].(map[string]any); ok {
			return target
		}
	}
	return prop
}

// schemaFor derives a Schema for struct type T via JSON Schema reflection,
// enriched with description and enum struct tags.
func schemaFor[T any](strict bool) (*Schema, error) {
	js, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}
	if js == nil {
		return nil, errNilSchema
	}
	data, err := json.Marshal(js)
	if err != nil {
		return nil, err
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, err
	}
	enrichSchemaFromStructTags(schemaMap, reflect.TypeOf(*new(T)))
	if strict {
		applyStrictMode(schemaMap)
	}
	stripSchemaIDs(schemaMap)
	return SchemaFromJSON(schemaMap)
}

// enrichSchemaFromStructTags adds description and enum from struct tags to
// root-level properties. typ may be a pointer; the json tag (first part
// before comma) is used to match property keys.
func enrichSchemaFromStructTags(schemaMap map[string]any, typ reflect.Type) {
	if schemaMap == nil || typ == nil {
		return
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return
	}
	jsonToField := make(map[string]reflect.StructField)
	for field := range typ.Fields() {
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		jsonToField[jsonTag] = field
	}
	for key, val := range props {
		prop, ok := val.(map[string]any)
		if !ok {
			continue
		}
		field, ok := jsonToField[key]
		if !ok {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for i, p := range parts {
				enum[i] = strings.TrimSpace(p)
			}
			prop["enum"] = enum
		}
	}
}

// walkSchema recursively visits every map node in the schema tree
// (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// applyStrictMode sets additionalProperties: false for every object in the
// schema and marks all properties required.
func applyStrictMode(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		if _, isObj := n["properties"]; isObj {
			n["additionalProperties"] = false
			if props, ok := n["properties"].(map[string]any); ok {
				keys := make([]string, 0, len(props))
				for k := range props {
					keys = append(keys, k)
				}
				slices.Sort(keys)
				required := make([]any, len(keys))
				for i, k := range keys {
					required[i] = k
				}
				if len(required) > 0 {
					n["required"] = required
				}
			}
		}
	})
}

var errNilSchema = errors.New("schema reflection returned nil")

// compileRawSchema compiles a raw JSON Schema map into a resolved validator.
// The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}

// stripSchemaIDs removes id and $id from schema so resolution does not
// depend on them.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
	})
}

// deepCopyMap clones a JSON-shaped map via marshal/unmarshal so callers and
// callees never share mutable schema state.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
