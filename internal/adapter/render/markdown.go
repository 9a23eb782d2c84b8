package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docgen/internal/adapter/evidence"
	"docgen/internal/domain"
)

// Markdown renders generated documentation into a directory of markdown
// files: index.md, one page per module, manual.md for manuals.
type Markdown struct {
	dir string
}

// NewMarkdown creates a renderer writing into dir.
func NewMarkdown(dir string) *Markdown {
	return &Markdown{dir: dir}
}

// WriteProject writes index.md plus one page per module and returns the
// index path.
func (m *Markdown) WriteProject(doc *domain.ProjectDoc) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, mod := range doc.Modules {
		page := ModulePage(mod)
		dest := filepath.Join(m.dir, moduleFileName(mod.Path))
		if err := os.WriteFile(dest, []byte(page), 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", dest, err)
		}
	}

	dest := filepath.Join(m.dir, "index.md")
	if err := os.WriteFile(dest, []byte(ProjectIndex(doc)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}

// WriteManual writes manual.md and returns its path.
func (m *Markdown) WriteManual(man domain.Manual) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	dest := filepath.Join(m.dir, "manual.md")
	if err := os.WriteFile(dest, []byte(ManualPage(man)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}

// ProjectIndex renders the index page: project summary, readme digest,
// and module navigation.
func ProjectIndex(doc *domain.ProjectDoc) string {
	var b strings.Builder
	b.WriteString("# Project Documentation\n\n")
	if doc.Summary != "" {
		b.WriteString(doc.Summary + "\n\n")
	}
	if doc.Readme != "" {
		b.WriteString("## About\n\n" + doc.Readme + "\n\n")
	}
	b.WriteString("## Modules\n\n")
	for _, mod := range doc.Modules {
		fmt.Fprintf(&b, "- [%s](%s)\n", mod.Path, moduleFileName(mod.Path))
	}
	return b.String()
}

// ModulePage renders one module page: summary, types with their methods,
// then free functions.
func ModulePage(mod domain.ModuleDoc) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", mod.Path)
	if mod.Summary != "" {
		b.WriteString(mod.Summary + "\n\n")
	}

	var funcs []domain.UnitDoc
	for _, u := range mod.Units {
		if u.Kind == domain.UnitType {
			fmt.Fprintf(&b, "## Type: %s\n\n", u.Name)
			if u.Signature != "" {
				fmt.Fprintf(&b, "```go\n%s\n```\n\n", u.Signature)
			}
			if u.Summary != "" {
				b.WriteString(u.Summary + "\n\n")
			}
			for _, meth := range u.Children {
				fmt.Fprintf(&b, "### Method: %s\n\n", headingFor(meth))
				if meth.Summary != "" {
					b.WriteString(meth.Summary + "\n\n")
				}
			}
			continue
		}
		funcs = append(funcs, u)
	}

	if len(funcs) > 0 {
		b.WriteString("## Functions\n\n")
		for _, fn := range funcs {
			fmt.Fprintf(&b, "### %s\n\n", headingFor(fn))
			if fn.Summary != "" {
				b.WriteString(fn.Summary + "\n\n")
			}
		}
	}
	return b.String()
}

// ManualPage renders the manual. Placeholder tokens the backfill could
// not resolve collapse to the no-information filler under their heading;
// unknown tokens are stripped. A heuristic manual renders its section
// map directly.
func ManualPage(man domain.Manual) string {
	if man.Heuristic {
		return SectionsPage("User Manual", man.Sections)
	}

	text := man.Text
	for _, token := range evidence.FindPlaceholders(text) {
		if _, known := evidence.SectionFor(token); known {
			text = strings.ReplaceAll(text, token, evidence.NoInformation)
		}
	}
	text = evidence.StripPlaceholders(text)

	var b strings.Builder
	b.WriteString("# User Manual\n\n")
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}

// SectionsPage renders a section map under a title, in manual section
// order.
func SectionsPage(title string, sections map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, section := range evidence.Sections {
		body, ok := sections[section]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section, body)
	}
	return b.String()
}

func headingFor(u domain.UnitDoc) string {
	if u.Signature != "" {
		return u.Signature
	}
	return u.Name
}

// moduleFileName flattens a source path into a page name, mod1.go
// becoming mod1.md.
func moduleFileName(path string) string {
	slug := strings.ReplaceAll(path, "/", "_")
	if ext := filepath.Ext(slug); ext != "" && ext != slug {
		slug = strings.TrimSuffix(slug, ext)
	}
	return slug + ".md"
}
