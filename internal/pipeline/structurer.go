// Package pipeline holds the model-backed stages: structuring raw text into
// markdown and extracting schema-shaped JSON from it.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"pagemonk/internal/llm"
	"pagemonk/pkg/logger"
)

// DefaultInstructions is the instruction block used when the caller supplies
// none.
const DefaultInstructions = `Please structure this content into clean, well-organized markdown format.
Include appropriate headings, lists, tables where relevant, and maintain the logical flow of information.
Make it easy to read and understand.`

// Structurer reformats raw text into markdown through a chat model.
type Structurer struct {
	model  llm.ChatModel
	logger logger.Logger
}

func NewStructurer(model llm.ChatModel, log logger.Logger) *Structurer {
	return &Structurer{
		model:  model,
		logger: log,
	}
}

// Structure builds the prompt and performs one blocking model call. The
// model is asked for markdown only, no commentary.
func (s *Structurer) Structure(ctx context.Context, content, instructions string) (string, error) {
	if strings.TrimSpace(instructions) == "" {
		instructions = DefaultInstructions
	}

	prompt := fmt.Sprintf(`%s

Content to structure:
%s

Return only the structured markdown content without any additional commentary.`, instructions, content)

	out, err := s.model.Chat(ctx, prompt)
	if err != nil {
		s.logger.Error("Structuring call failed", logger.Error(err))
		return "", fmt.Errorf("failed to structure content: %w", err)
	}

	return strings.TrimSpace(out), nil
}
