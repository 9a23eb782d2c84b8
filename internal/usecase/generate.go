package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docgen/internal/adapter/chunker"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// GenerateUseCase documents a repository: scan sources, parse each file
// into its unit tree, summarize bottom-up (functions first, then types
// over their method summaries, then the module over its unit summaries),
// and reduce module summaries into a project summary. Completed modules
// are recorded in the progress ledger so an interrupted run can resume.
type GenerateUseCase struct {
	walker  port.Walker
	reader  port.FileReader
	parsers *chunker.Registry
	sum     *SummarizeUseCase
	store   port.ResponseStore
	logger  *zap.Logger

	// OnModule, when set, is called after each module completes.
	OnModule func(done, total int, path string)

	// Flat skips per-unit documentation: each module is summarized in
	// one pass over its structural tree.
	Flat bool
}

// NewGenerateUseCase wires the documentation pipeline.
func NewGenerateUseCase(walker port.Walker, reader port.FileReader, parsers *chunker.Registry, sum *SummarizeUseCase, store port.ResponseStore, logger *zap.Logger) *GenerateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateUseCase{
		walker:  walker,
		reader:  reader,
		parsers: parsers,
		sum:     sum,
		store:   store,
		logger:  logger,
	}
}

// Run documents every source under root. With resume set, modules already
// in the progress ledger are loaded instead of re-summarized; the ledger
// is cleared once the whole run succeeds.
func (g *GenerateUseCase) Run(ctx context.Context, root string, resume bool) (*domain.ProjectDoc, error) {
	paths, err := g.walker.Sources(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	completed := make(map[string][]byte)
	if resume {
		completed, err = g.store.Progress()
		if err != nil {
			return nil, fmt.Errorf("failed to load progress: %w", err)
		}
	} else if err := g.store.ClearProgress(); err != nil {
		return nil, fmt.Errorf("failed to reset progress: %w", err)
	}

	doc := &domain.ProjectDoc{Root: root}
	for i, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if payload, ok := completed[rel]; ok {
			var m domain.ModuleDoc
			if err := json.Unmarshal(payload, &m); err == nil {
				g.logger.Debug("module loaded from progress ledger", zap.String("path", rel))
				doc.Modules = append(doc.Modules, m)
				g.report(i+1, len(paths), rel)
				continue
			}
			g.logger.Warn("unreadable progress entry, re-summarizing", zap.String("path", rel))
		}

		m, err := g.documentModule(ctx, root, rel)
		if err != nil {
			return nil, err
		}
		doc.Modules = append(doc.Modules, m)

		payload, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to encode progress for %s: %w", rel, err)
		}
		if err := g.store.SetProgressEntry(rel, payload); err != nil {
			return nil, fmt.Errorf("failed to record progress for %s: %w", rel, err)
		}
		g.report(i+1, len(paths), rel)
	}

	doc.Readme = g.summarizeReadme(ctx, root)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc.Summary = g.summarizeProject(ctx, root, doc)

	if err := g.store.ClearProgress(); err != nil {
		g.logger.Warn("failed to clear progress ledger", zap.Error(err))
	}
	return doc, nil
}

// documentModule parses one source file and summarizes its unit tree
// bottom-up.
func (g *GenerateUseCase) documentModule(ctx context.Context, root, rel string) (domain.ModuleDoc, error) {
	content, err := g.reader.ReadFile(filepath.Join(root, rel))
	if err != nil {
		g.logger.Warn("failed to read source", zap.String("path", rel), zap.Error(err))
		return domain.ModuleDoc{Path: rel}, nil
	}

	unit, err := g.parsers.Parse(rel, content)
	if err != nil {
		g.logger.Warn("failed to parse source", zap.String("path", rel), zap.Error(err))
		return domain.ModuleDoc{Path: rel}, nil
	}

	if g.Flat {
		summary, err := g.sum.SummarizeUnit(ctx, rel, unit, domain.RoleModule)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ModuleDoc{}, ctx.Err()
			}
			g.logger.Warn("module summarization failed",
				zap.String("path", rel), zap.Error(err))
			summary = ""
		}
		return domain.ModuleDoc{Path: rel, Summary: summary}, nil
	}

	rootDoc, err := g.documentUnit(ctx, rel, unit)
	if err != nil {
		return domain.ModuleDoc{}, err
	}
	return domain.ModuleDoc{Path: rel, Summary: rootDoc.Summary, Units: rootDoc.Children}, nil
}

// documentUnit summarizes a unit after its children, so parent material
// can cite child summaries.
func (g *GenerateUseCase) documentUnit(ctx context.Context, key string, unit domain.SourceUnit) (domain.UnitDoc, error) {
	children := make([]domain.UnitDoc, 0, len(unit.Children))
	for _, c := range unit.Children {
		childKey := key + ":" + c.Name
		if unit.Kind != domain.UnitModule {
			childKey = key + "." + c.Name
		}
		cd, err := g.documentUnit(ctx, childKey, c)
		if err != nil {
			return domain.UnitDoc{}, err
		}
		children = append(children, cd)
	}

	var role, material string
	switch unit.Kind {
	case domain.UnitType:
		role, material = domain.RoleClass, typeMaterial(unit, children)
	case domain.UnitModule:
		role, material = domain.RoleModule, moduleMaterial(unit, children)
	default:
		role, material = domain.RoleFunction, unit.Source
	}

	summary, err := g.sum.Summarize(ctx, key, material, role)
	if err != nil {
		if ctx.Err() != nil {
			return domain.UnitDoc{}, ctx.Err()
		}
		g.logger.Warn("unit summarization failed",
			zap.String("unit", unit.Name),
			zap.String("kind", unit.Kind),
			zap.String("source", key),
			zap.Error(err))
		summary = ""
	}

	return domain.UnitDoc{
		Kind:      unit.Kind,
		Name:      unit.Name,
		Signature: unit.Signature,
		Summary:   summary,
		Children:  children,
	}, nil
}

// summarizeReadme summarizes the top-ranked README document, if any.
func (g *GenerateUseCase) summarizeReadme(ctx context.Context, root string) string {
	docs, err := g.walker.Documents(root)
	if err != nil {
		g.logger.Warn("failed to scan documents", zap.Error(err))
		return ""
	}

	for _, rel := range docs {
		if !isReadme(rel) {
			continue
		}
		content, err := g.reader.ReadFile(filepath.Join(root, rel))
		if err != nil {
			g.logger.Warn("failed to read readme", zap.String("path", rel), zap.Error(err))
			return ""
		}
		out, err := g.sum.Summarize(ctx, rel, content, domain.RoleReadme)
		if err != nil {
			g.logger.Warn("readme summarization failed", zap.String("path", rel), zap.Error(err))
			return ""
		}
		return out
	}
	return ""
}

// summarizeProject reduces the readme and module summaries into one
// project summary.
func (g *GenerateUseCase) summarizeProject(ctx context.Context, root string, doc *domain.ProjectDoc) string {
	var b strings.Builder
	if doc.Readme != "" {
		b.WriteString(doc.Readme)
		b.WriteString("\n\n")
	}
	for _, m := range doc.Modules {
		if m.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", m.Path, m.Summary)
	}
	material := strings.TrimSpace(b.String())
	if material == "" {
		return ""
	}

	out, err := g.sum.Summarize(ctx, "project:"+root, material, domain.RoleProject)
	if err != nil {
		g.logger.Warn("project summarization failed", zap.Error(err))
		return ""
	}
	return out
}

func (g *GenerateUseCase) report(done, total int, path string) {
	if g.OnModule != nil {
		g.OnModule(done, total, path)
	}
}

// typeMaterial digests a type for the class role: declaration, doc, and
// method summaries.
func typeMaterial(unit domain.SourceUnit, children []domain.UnitDoc) string {
	if len(children) == 0 {
		return unit.Source
	}
	var b strings.Builder
	b.WriteString(unit.Signature)
	b.WriteString("\n")
	if unit.Doc != "" {
		b.WriteString(unit.Doc)
		b.WriteString("\n")
	}
	b.WriteString("\nMethods:\n")
	for _, c := range children {
		writeUnitLine(&b, c)
	}
	return b.String()
}

// moduleMaterial digests a module for the module role: package doc plus
// one line per unit summary. A file with no parsed units falls back to
// its raw source.
func moduleMaterial(unit domain.SourceUnit, children []domain.UnitDoc) string {
	if len(children) == 0 {
		return unit.Source
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Module %s\n", unit.Name)
	if unit.Doc != "" {
		b.WriteString(unit.Doc)
		b.WriteString("\n")
	}
	b.WriteString("\nUnits:\n")
	for _, c := range children {
		writeUnitLine(&b, c)
	}
	return b.String()
}

func writeUnitLine(b *strings.Builder, c domain.UnitDoc) {
	name := c.Name
	if c.Signature != "" {
		name = c.Signature
	}
	if c.Summary != "" {
		fmt.Fprintf(b, "- %s: %s\n", name, c.Summary)
	} else {
		fmt.Fprintf(b, "- %s\n", name)
	}
}

func isReadme(path string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Base(path)), "readme")
}
