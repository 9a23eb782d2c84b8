package tokenizer

import (
	"strings"
	"unicode"
)

// maxPieceLen bounds how many letters or digits one fallback piece holds.
const maxPieceLen = 4

// Fallback is a deterministic token estimator used when no model encoding
// is available. It needs no I/O, errs toward over-counting so budget
// checks stay safe, and Decode restores the scrubbed input exactly.
//
// Rules: runs of letters and digits split into pieces of at most four
// characters; a whitespace rune attaches to the preceding piece when one
// exists, otherwise it forms its own piece; any other rune is a piece.
type Fallback struct{}

// NewFallback creates a new Fallback estimator.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Tokenize splits text into estimator pieces.
func (f *Fallback) Tokenize(text string) []string {
	text = Scrub(text)

	var pieces []string
	var run []rune

	flush := func() {
		for len(run) > maxPieceLen {
			pieces = append(pieces, string(run[:maxPieceLen]))
			run = run[maxPieceLen:]
		}
		if len(run) > 0 {
			pieces = append(pieces, string(run))
			run = run[:0]
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			run = append(run, r)
		case unicode.IsSpace(r):
			flush()
			if len(pieces) > 0 {
				pieces[len(pieces)-1] += string(r)
			} else {
				pieces = append(pieces, string(r))
			}
		default:
			flush()
			pieces = append(pieces, string(r))
		}
	}
	flush()

	return pieces
}

// CountTokens returns the number of pieces Tokenize would produce.
func (f *Fallback) CountTokens(text string) int {
	return len(f.Tokenize(text))
}

// Decode restores the tokenized text by concatenation.
func (f *Fallback) Decode(tokens []string) string {
	return strings.Join(tokens, "")
}
