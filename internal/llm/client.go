// Package llm provides the chat model client used by the structuring and
// schema extraction stages.
package llm

import (
	"context"
)

// ChatModel is a single blocking request/response call against a language
// model. Implementations must honor context cancellation and bound the call
// with a timeout.
type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
}
