package port

type Tokenizer interface {
	Tokenize(text string) []string

	CountTokens(text string) int

	// Decode restores text from Tokenize output by concatenation.
	Decode(tokens []string) string
}
