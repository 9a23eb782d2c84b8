package chunker

import (
	"path/filepath"
	"strings"

	"docgen/internal/domain"
	"docgen/internal/port"
)

// Registry dispatches files to the parser that supports them, with a
// plaintext fallback so every file yields at least a module unit.
type Registry struct {
	parsers  []port.UnitParser
	fallback *PlainParser
}

// NewRegistry creates a Registry over the given language parsers.
func NewRegistry(parsers ...port.UnitParser) *Registry {
	return &Registry{
		parsers:  parsers,
		fallback: NewPlainParser(),
	}
}

// Parse runs the first supporting parser on the file, falling back to a
// flat module unit when no parser matches or parsing fails.
func (r *Registry) Parse(path, content string) (domain.SourceUnit, error) {
	for _, p := range r.parsers {
		if !p.Supports(path) {
			continue
		}
		unit, err := p.Parse(path, content)
		if err != nil {
			break
		}
		return unit, nil
	}
	return r.fallback.Parse(path, content)
}

// PlainParser treats a whole file as one module unit with no children.
type PlainParser struct{}

// NewPlainParser creates a new PlainParser.
func NewPlainParser() *PlainParser {
	return &PlainParser{}
}

// Language returns the language this parser handles.
func (p *PlainParser) Language() string {
	return "text"
}

// Supports accepts any path.
func (p *PlainParser) Supports(string) bool {
	return true
}

// Parse wraps the file content in a module unit.
func (p *PlainParser) Parse(path, content string) (domain.SourceUnit, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return domain.SourceUnit{
		Kind:   domain.UnitModule,
		Name:   name,
		Source: content,
		Line:   1,
	}, nil
}
