package port

import "context"

// Summarizer represents a language model that condenses text.
type Summarizer interface {
	// Summarize condenses text using the prompt template for role.
	Summarize(ctx context.Context, text, role string) (string, error)

	// SummarizeWithSystem condenses text under an explicit system prompt.
	SummarizeWithSystem(ctx context.Context, text, role, system string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
