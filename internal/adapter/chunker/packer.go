package chunker

import (
	"strings"

	"docgen/internal/domain"
	"docgen/internal/port"
)

const blockSep = "\n\n"

// Packer groups blocks into chunks under a token budget, preserving
// input order. An optional character ceiling also bounds chunks, used by
// document flows where model context is measured both ways.
type Packer struct {
	tok    port.Tokenizer
	budget int
	chars  int
}

// NewPacker creates a Packer with a token budget only.
func NewPacker(tok port.Tokenizer, budget int) *Packer {
	return &Packer{tok: tok, budget: budget}
}

// NewPackerWithCharLimit creates a Packer that also flushes when a chunk
// would exceed chars characters.
func NewPackerWithCharLimit(tok port.Tokenizer, budget, chars int) *Packer {
	return &Packer{tok: tok, budget: budget, chars: chars}
}

// PackText splits text on natural boundaries and packs the blocks.
func (p *Packer) PackText(text string) []domain.Chunk {
	return p.Pack(SplitBlocks(text))
}

// Pack greedily accumulates blocks into chunks. The joining separator's
// token cost is charged once a chunk is non-empty. A block exceeding the
// budget on its own goes through the long-block fallback.
func (p *Packer) Pack(blocks []domain.Block) []domain.Chunk {
	sepTokens := p.tok.CountTokens(blockSep)

	var chunks []domain.Chunk
	var current []string
	currentTokens := 0
	currentChars := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, blockSep)
		chunks = append(chunks, domain.Chunk{
			Index:  len(chunks),
			Text:   text,
			Tokens: p.tok.CountTokens(text),
		})
		current = nil
		currentTokens = 0
		currentChars = 0
	}

	for _, b := range blocks {
		blockTokens := p.tok.CountTokens(b.Text)

		if blockTokens > p.budget {
			flush()
			for _, piece := range p.splitLongBlock(b) {
				chunks = append(chunks, domain.Chunk{
					Index:  len(chunks),
					Text:   piece,
					Tokens: p.tok.CountTokens(piece),
				})
			}
			continue
		}

		extraTokens := blockTokens
		extraChars := len(b.Text)
		if len(current) > 0 {
			extraTokens += sepTokens
			extraChars += len(blockSep)
		}

		over := currentTokens+extraTokens > p.budget ||
			(p.chars > 0 && currentChars+extraChars > p.chars)
		if over && len(current) > 0 {
			flush()
			extraTokens = blockTokens
			extraChars = len(b.Text)
		}

		current = append(current, b.Text)
		currentTokens += extraTokens
		currentChars += extraChars
	}
	flush()

	return chunks
}

// splitLongBlock slices an oversized block by a character window derived
// from its observed chars-per-token ratio. A fenced block is never split.
func (p *Packer) splitLongBlock(b domain.Block) []string {
	if b.Fenced {
		return []string{b.Text}
	}

	runes := []rune(b.Text)
	total := p.tok.CountTokens(b.Text)
	if total <= 0 {
		return nil
	}

	avgChars := (len(runes) + total - 1) / total
	if avgChars < 1 {
		avgChars = 1
	}
	window := p.budget * avgChars
	if window < 1 {
		window = 1
	}

	var pieces []string
	for i := 0; i < len(runes); i += window {
		end := i + window
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[i:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}
