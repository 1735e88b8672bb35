// Package fieldspec models the user-defined extraction field specification:
// an arbitrary-depth mapping from field name to a primitive type tag
// ("string" or "number") or a nested spec.
package fieldspec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FieldSpec is the nested field specification as submitted by the caller and
// stored as JSON text at rest.
type FieldSpec map[string]any

// Parse decodes and validates a serialized field spec.
func Parse(raw []byte) (FieldSpec, error) {
	var spec FieldSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode field spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Validate rejects empty specs and unknown type tags at any depth.
func (s FieldSpec) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("field spec must not be empty")
	}
	return validateNode(s, "")
}

func validateNode(node map[string]any, path string) error {
	for name, value := range node {
		fieldPath := name
		if path != "" {
			fieldPath = path + "." + name
		}

		switch v := value.(type) {
		case string:
			if v != "string" && v != "number" {
				return fmt.Errorf("field %q: unknown type tag %q", fieldPath, v)
			}
		case map[string]any:
			if len(v) == 0 {
				return fmt.Errorf("field %q: nested spec must not be empty", fieldPath)
			}
			if err := validateNode(v, fieldPath); err != nil {
				return err
			}
		default:
			return fmt.Errorf("field %q: value must be a type tag or a nested spec", fieldPath)
		}
	}
	return nil
}

// Compile produces a JSON Schema document matching the spec's shape. Every
// field is required but nullable, since the model substitutes null for values
// it cannot find in the text.
func (s FieldSpec) Compile() map[string]any {
	return compileNode(s)
}

func compileNode(node map[string]any) map[string]any {
	properties := make(map[string]any, len(node))
	required := make([]string, 0, len(node))

	for name, value := range node {
		required = append(required, name)
		switch v := value.(type) {
		case string:
			properties[name] = map[string]any{"type": []string{v, "null"}}
		case map[string]any:
			nested := compileNode(v)
			nested["type"] = []string{"object", "null"}
			properties[name] = nested
		}
	}
	sort.Strings(required)

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// JSON serializes the spec for storage.
func (s FieldSpec) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode field spec: %w", err)
	}
	return string(data), nil
}
