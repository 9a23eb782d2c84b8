package tokenizer

import "regexp"

// specialTokenRE matches model control tokens, including the <|fm_...|>
// misspelling some local models emit.
var specialTokenRE = regexp.MustCompile(`<\|(?:f(?:im|m)_(?:prefix|middle|suffix)|endoftext)\|>`)

// Scrub removes special control tokens from text before encoding.
func Scrub(text string) string {
	return specialTokenRE.ReplaceAllString(text, "")
}
