package llm

import "context"

// Client generates a completion from a system framing and a user prompt.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
