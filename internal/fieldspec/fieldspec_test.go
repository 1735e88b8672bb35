package fieldspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FieldSpec
		wantErr string
	}{
		{
			name: "flat spec",
			spec: FieldSpec{"vendor": "string", "total": "number"},
		},
		{
			name: "nested spec",
			spec: FieldSpec{
				"vendor": "string",
				"address": map[string]any{
					"city": "string",
					"zip":  "string",
				},
			},
		},
		{
			name:    "empty spec",
			spec:    FieldSpec{},
			wantErr: "must not be empty",
		},
		{
			name:    "unknown type tag",
			spec:    FieldSpec{"total": "float"},
			wantErr: `unknown type tag "float"`,
		},
		{
			name:    "empty nested spec",
			spec:    FieldSpec{"address": map[string]any{}},
			wantErr: "nested spec must not be empty",
		},
		{
			name:    "bad value type",
			spec:    FieldSpec{"total": 42},
			wantErr: "must be a type tag or a nested spec",
		},
		{
			name: "nested error carries path",
			spec: FieldSpec{
				"address": map[string]any{"zip": "integer"},
			},
			wantErr: `field "address.zip"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(`{"vendor": "string", "total": "number"}`))
	require.NoError(t, err)
	assert.Equal(t, "string", spec["vendor"])

	_, err = Parse([]byte(`{"vendor": `))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"vendor": "datetime"}`))
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	spec := FieldSpec{
		"vendor": "string",
		"total":  "number",
		"address": map[string]any{
			"city": "string",
		},
	}

	compiled := spec.Compile()

	assert.Equal(t, "object", compiled["type"])
	assert.Equal(t, []string{"address", "total", "vendor"}, compiled["required"])

	props := compiled["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": []string{"string", "null"}}, props["vendor"])
	assert.Equal(t, map[string]any{"type": []string{"number", "null"}}, props["total"])

	address := props["address"].(map[string]any)
	assert.Equal(t, []string{"object", "null"}, address["type"])
	assert.Equal(t, []string{"city"}, address["required"])
}

func TestValidateOutput(t *testing.T) {
	spec := FieldSpec{
		"vendor": "string",
		"total":  "number",
	}

	assert.NoError(t, ValidateOutput(spec, []byte(`{"vendor": "Acme", "total": 12.5}`)))
	assert.NoError(t, ValidateOutput(spec, []byte(`{"vendor": null, "total": null}`)))

	err := ValidateOutput(spec, []byte(`{"vendor": "Acme"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match field spec")

	err = ValidateOutput(spec, []byte(`{"vendor": "Acme", "total": "12.5"}`))
	assert.Error(t, err)

	err = ValidateOutput(spec, []byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestValidateOutputNested(t *testing.T) {
	spec := FieldSpec{
		"vendor": "string",
		"address": map[string]any{
			"city": "string",
		},
	}

	assert.NoError(t, ValidateOutput(spec, []byte(`{"vendor": "Acme", "address": {"city": "Berlin"}}`)))
	assert.NoError(t, ValidateOutput(spec, []byte(`{"vendor": "Acme", "address": null}`)))
	assert.Error(t, ValidateOutput(spec, []byte(`{"vendor": "Acme", "address": {}}`)))
}

func TestJSONRoundTrip(t *testing.T) {
	spec := FieldSpec{"vendor": "string"}

	raw, err := spec.JSON()
	require.NoError(t, err)

	parsed, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, spec, parsed)
}
