package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"docgen/internal/port"
)

const encodingName = "cl100k_base"

// Tiktoken estimates budgets with a real BPE encoding. Pieces are the
// decoded per-token strings, so Decode is exact concatenation.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encodingName, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Tokenize encodes text and returns the per-token string pieces.
func (t *Tiktoken) Tokenize(text string) []string {
	ids := t.enc.Encode(Scrub(text), nil, nil)
	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i] = t.enc.Decode([]int{id})
	}
	return pieces
}

// CountTokens returns the encoded length of text.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.enc.Encode(Scrub(text), nil, nil))
}

// Decode restores the tokenized text by concatenation.
func (t *Tiktoken) Decode(tokens []string) string {
	return strings.Join(tokens, "")
}

// New returns the best available estimator: the BPE encoding when it can
// be constructed, the deterministic fallback otherwise.
func New(logger *zap.Logger) port.Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	tk, err := NewTiktoken()
	if err != nil {
		logger.Warn("bpe encoding unavailable, using fallback estimator", zap.Error(err))
		return NewFallback()
	}
	return tk
}
