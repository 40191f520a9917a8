package port

import "context"

// GenerateInput is a single prompt sent to the text-intelligence backend.
type GenerateInput struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// TextGenerator abstracts the text-intelligence backend: prompt in, text out.
// Implementations must be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
}
