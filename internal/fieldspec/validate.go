package fieldspec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateOutput checks model output against the schema compiled from the
// spec. A nil error means data is valid JSON shaped like the spec.
func ValidateOutput(spec FieldSpec, data []byte) error {
	schemaDoc, err := json.Marshal(spec.Compile())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fieldspec.json", bytes.NewReader(schemaDoc)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("fieldspec.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("model output does not match field spec: %w", err)
	}
	return nil
}
