package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pagemonk/internal/fieldspec"
	"pagemonk/internal/llm"
	"pagemonk/pkg/logger"
)

// SchemaExtractor pulls schema-shaped JSON out of raw text through a chat
// model and validates the result before handing it back.
type SchemaExtractor struct {
	model  llm.ChatModel
	logger logger.Logger
}

func NewSchemaExtractor(model llm.ChatModel, log logger.Logger) *SchemaExtractor {
	return &SchemaExtractor{
		model:  model,
		logger: log,
	}
}

// Extract asks the model for a JSON object shaped like spec, with null for
// fields absent from the text. The output is fence-stripped and validated
// against the compiled spec; non-conforming output is an error, never passed
// through.
func (e *SchemaExtractor) Extract(ctx context.Context, content string, spec fieldspec.FieldSpec) (string, error) {
	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode field spec: %w", err)
	}

	prompt := fmt.Sprintf(`Extract information from the following content according to this schema:

Schema: %s

Content: %s

Return the extracted information as a JSON object that matches the schema structure.
If a field cannot be found, use null.
Return only valid JSON without any additional text or commentary.`, specJSON, content)

	out, err := e.model.Chat(ctx, prompt)
	if err != nil {
		e.logger.Error("Schema extraction call failed", logger.Error(err))
		return "", fmt.Errorf("failed to extract with schema: %w", err)
	}

	cleaned := stripCodeFence(out)
	if err := fieldspec.ValidateOutput(spec, []byte(cleaned)); err != nil {
		e.logger.Error("Schema extraction output rejected",
			logger.Error(err),
		)
		return "", err
	}

	return cleaned, nil
}

// stripCodeFence removes a surrounding markdown code fence. Models often wrap
// JSON answers in ```json blocks despite the instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. "json".
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
