package chunker

import (
	"strings"

	"docgen/internal/domain"
)

// PackUnit packs a parsed declaration tree. A unit whose text fits the
// budget becomes one chunk; an oversized unit descends into its children
// in declaration order instead of being character-split. Only a leaf that
// alone exceeds the budget falls back to the character window.
func (p *Packer) PackUnit(unit domain.SourceUnit) []domain.Chunk {
	pieces := p.packUnit(unit, nil)

	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, text := range pieces {
		chunks = append(chunks, domain.Chunk{
			Index:  len(chunks),
			Text:   text,
			Tokens: p.tok.CountTokens(text),
		})
	}
	return chunks
}

func (p *Packer) packUnit(unit domain.SourceUnit, pieces []string) []string {
	text := UnitText(unit)
	if strings.TrimSpace(text) == "" {
		return pieces
	}

	if p.tok.CountTokens(text) <= p.budget {
		return append(pieces, text)
	}

	if len(unit.Children) == 0 {
		return append(pieces, p.splitLongBlock(domain.Block{Text: text})...)
	}

	// A type's declaration is not recoverable from its children, so it
	// descends as a leaf of its own. A module's text is the whole file;
	// its children carry the declarations.
	if unit.Kind != domain.UnitModule && unit.Source != "" {
		own := unit
		own.Children = nil
		pieces = p.packUnit(own, pieces)
	}
	for _, c := range unit.Children {
		pieces = p.packUnit(c, pieces)
	}
	return pieces
}

// UnitText returns the source text a unit stands for. Go methods are
// declared outside their type, so a type's text joins the declaration
// with its methods; a module's text is the file itself.
func UnitText(unit domain.SourceUnit) string {
	if len(unit.Children) == 0 || unit.Kind == domain.UnitModule {
		return unit.Source
	}

	parts := make([]string, 0, len(unit.Children)+1)
	if unit.Source != "" {
		parts = append(parts, unit.Source)
	}
	for _, c := range unit.Children {
		if t := UnitText(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, blockSep)
}
