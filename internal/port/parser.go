package port

import "docgen/internal/domain"

// UnitParser extracts the structural tree of a source file. One parser
// per language; Supports gates on the file path.
type UnitParser interface {
	Parse(path, content string) (domain.SourceUnit, error)

	Language() string

	Supports(path string) bool
}
