package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ParseError means the candidate text was not decodable as a JSON object at
// all. It is distinct from ValidationError so callers can tell a garbled
// completion from a well-formed one with the wrong shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response is not a JSON object: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError names the first offending field. Validation is
// all-or-nothing: no partial-record repair.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Schema is a declared response shape. Shapes are reflected from the tagged
// result structs in models, so the validator and the decode target cannot
// drift apart.
type Schema struct {
	root *jsonschema.Schema
}

// For reflects the schema for T. Field requirements come from
// jsonschema:"required" tags; enum fields from jsonschema:"enum=..." tags.
func For[T any]() *Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	return &Schema{root: reflector.Reflect(v)}
}

// Validate parses the candidate and checks it against the declared shape.
// Unknown extra fields are ignored. On success it returns the generic parsed
// record, which the caller then decodes into the concrete type.
func (s *Schema) Validate(candidate string) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(candidate), &record); err != nil {
		return nil, &ParseError{Err: err}
	}

	if err := validateObject(record, s.root, ""); err != nil {
		return nil, err
	}

	return record, nil
}

func validateObject(record map[string]any, schema *jsonschema.Schema, path string) error {
	for _, name := range schema.Required {
		if _, ok := record[name]; !ok {
			return &ValidationError{Field: joinPath(path, name), Reason: "required field is missing"}
		}
	}

	if schema.Properties == nil {
		return nil
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name, fieldSchema := pair.Key, pair.Value

		value, ok := record[name]
		if !ok || value == nil {
			continue
		}

		if err := validateValue(value, fieldSchema, joinPath(path, name)); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(value any, schema *jsonschema.Schema, path string) error {
	switch schema.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected string, got %T", value)}
		}
		return validateEnum(str, schema, path)

	case "integer":
		num, ok := value.(float64)
		if !ok || num != float64(int64(num)) {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected integer, got %v", value)}
		}

	case "number":
		if _, ok := value.(float64); !ok {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected number, got %T", value)}
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected boolean, got %T", value)}
		}

	case "array":
		items, ok := value.([]any)
		if !ok {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected array, got %T", value)}
		}
		if schema.Items == nil {
			return nil
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if schema.Items.Type == "object" {
				obj, ok := item.(map[string]any)
				if !ok {
					return &ValidationError{Field: itemPath, Reason: fmt.Sprintf("expected object, got %T", item)}
				}
				if err := validateObject(obj, schema.Items, itemPath); err != nil {
					return err
				}
			} else if err := validateValue(item, schema.Items, itemPath); err != nil {
				return err
			}
		}

	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return &ValidationError{Field: path, Reason: fmt.Sprintf("expected object, got %T", value)}
		}
		return validateObject(obj, schema, path)
	}

	return nil
}

func validateEnum(value string, schema *jsonschema.Schema, path string) error {
	if len(schema.Enum) == 0 {
		return nil
	}

	for _, allowed := range schema.Enum {
		if str, ok := allowed.(string); ok && str == value {
			return nil
		}
	}

	return &ValidationError{Field: path, Reason: fmt.Sprintf("value %q is not in the allowed set", value)}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// Decode validates the candidate and unmarshals it into T in one step.
func Decode[T any](s *Schema, candidate string) (*T, error) {
	if _, err := s.Validate(candidate); err != nil {
		return nil, err
	}

	result := new(T)
	if err := json.Unmarshal([]byte(candidate), result); err != nil {
		return nil, &ParseError{Err: err}
	}

	return result, nil
}
