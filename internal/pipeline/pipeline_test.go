package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemonk/internal/fieldspec"
	"pagemonk/pkg/logger"
)

type fakeModel struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeModel) Chat(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func TestStructureUsesDefaultInstructions(t *testing.T) {
	model := &fakeModel{reply: "# Heading\n\ncontent\n"}
	s := NewStructurer(model, logger.NewTestLogger())

	out, err := s.Structure(context.Background(), "raw text", "")
	require.NoError(t, err)

	assert.Equal(t, "# Heading\n\ncontent", out)
	assert.Contains(t, model.lastPrompt, DefaultInstructions)
	assert.Contains(t, model.lastPrompt, "Content to structure:\nraw text")
}

func TestStructureCustomInstructions(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := NewStructurer(model, logger.NewTestLogger())

	_, err := s.Structure(context.Background(), "raw text", "Summarize as a table")
	require.NoError(t, err)

	assert.Contains(t, model.lastPrompt, "Summarize as a table")
	assert.NotContains(t, model.lastPrompt, DefaultInstructions)
}

func TestStructureModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("model unavailable")}
	s := NewStructurer(model, logger.NewTestLogger())

	_, err := s.Structure(context.Background(), "raw text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to structure content")
}

func TestSchemaExtract(t *testing.T) {
	spec := fieldspec.FieldSpec{"vendor": "string", "total": "number"}
	model := &fakeModel{reply: `{"vendor": "Acme", "total": 12.5}`}
	e := NewSchemaExtractor(model, logger.NewTestLogger())

	out, err := e.Extract(context.Background(), "some receipt text", spec)
	require.NoError(t, err)

	assert.JSONEq(t, `{"vendor": "Acme", "total": 12.5}`, out)
	assert.Contains(t, model.lastPrompt, "some receipt text")
	assert.Contains(t, model.lastPrompt, `"vendor": "string"`)
}

func TestSchemaExtractStripsCodeFence(t *testing.T) {
	spec := fieldspec.FieldSpec{"vendor": "string"}
	model := &fakeModel{reply: "```json\n{\"vendor\": \"Acme\"}\n```"}
	e := NewSchemaExtractor(model, logger.NewTestLogger())

	out, err := e.Extract(context.Background(), "text", spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vendor": "Acme"}`, out)
}

func TestSchemaExtractRejectsBadOutput(t *testing.T) {
	spec := fieldspec.FieldSpec{"vendor": "string", "total": "number"}
	e := NewSchemaExtractor(&fakeModel{reply: `{"vendor": "Acme"}`}, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), "text", spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match field spec")

	e = NewSchemaExtractor(&fakeModel{reply: "Sure! Here is the JSON you asked for."}, logger.NewTestLogger())
	_, err = e.Extract(context.Background(), "text", spec)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"fence with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence without language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}
