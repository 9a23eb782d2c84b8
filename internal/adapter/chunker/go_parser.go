package chunker

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"docgen/internal/domain"
)

// GoParser parses Go source into a structural unit tree: the file as the
// module root, declared types with their methods attached, then free
// functions in declaration order.
type GoParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

// Language returns the language this parser handles.
func (p *GoParser) Language() string {
	return "go"
}

// Supports reports whether path looks like a Go source file.
func (p *GoParser) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}

// Parse builds the structural tree for one Go file.
func (p *GoParser) Parse(path, content string) (domain.SourceUnit, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return domain.SourceUnit{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	lines := strings.Split(content, "\n")

	module := domain.SourceUnit{
		Kind:   domain.UnitModule,
		Name:   f.Name.Name,
		Source: content,
		Line:   1,
	}
	if f.Doc != nil {
		module.Doc = strings.TrimSpace(f.Doc.Text())
	}

	types := make(map[string]*domain.SourceUnit)
	var typeOrder []string

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			unit := p.typeUnit(fset, gd, ts, lines)
			types[ts.Name.Name] = &unit
			typeOrder = append(typeOrder, ts.Name.Name)
		}
	}

	var funcs []domain.SourceUnit
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		unit := p.functionUnit(fset, fn, lines)
		if recv := receiverTypeName(fn); recv != "" {
			if parent, ok := types[recv]; ok {
				parent.Children = append(parent.Children, unit)
				continue
			}
		}
		funcs = append(funcs, unit)
	}

	for _, name := range typeOrder {
		module.Children = append(module.Children, *types[name])
	}
	module.Children = append(module.Children, funcs...)

	return module, nil
}

// functionUnit extracts a function or method declaration.
func (p *GoParser) functionUnit(fset *token.FileSet, fn *ast.FuncDecl, lines []string) domain.SourceUnit {
	startPos := fset.Position(fn.Pos())
	endPos := fset.Position(fn.End())

	var sig strings.Builder
	sig.WriteString("func ")
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		sig.WriteString("(")
		sig.WriteString(p.formatFieldList(fn.Recv))
		sig.WriteString(") ")
	}
	sig.WriteString(fn.Name.Name)
	sig.WriteString("(")
	if fn.Type.Params != nil {
		sig.WriteString(p.formatFieldList(fn.Type.Params))
	}
	sig.WriteString(")")
	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		sig.WriteString(" ")
		if len(fn.Type.Results.List) > 1 || fn.Type.Results.List[0].Names != nil {
			sig.WriteString("(")
			sig.WriteString(p.formatFieldList(fn.Type.Results))
			sig.WriteString(")")
		} else {
			sig.WriteString(p.formatFieldList(fn.Type.Results))
		}
	}

	kind := domain.UnitFunction
	if fn.Recv != nil {
		kind = domain.UnitMethod
	}

	doc := ""
	if fn.Doc != nil {
		doc = strings.TrimSpace(fn.Doc.Text())
	}

	return domain.SourceUnit{
		Kind:      kind,
		Name:      fn.Name.Name,
		Signature: sig.String(),
		Doc:       doc,
		Source:    extractLines(lines, startPos.Line, endPos.Line),
		Line:      startPos.Line,
	}
}

// typeUnit extracts a type declaration.
func (p *GoParser) typeUnit(fset *token.FileSet, decl *ast.GenDecl, ts *ast.TypeSpec, lines []string) domain.SourceUnit {
	start := fset.Position(ts.Pos()).Line
	end := fset.Position(ts.End()).Line
	if decl.Lparen == 0 {
		start = fset.Position(decl.Pos()).Line
		end = fset.Position(decl.End()).Line
	}

	doc := ""
	if ts.Doc != nil {
		doc = strings.TrimSpace(ts.Doc.Text())
	} else if decl.Doc != nil {
		doc = strings.TrimSpace(decl.Doc.Text())
	}

	return domain.SourceUnit{
		Kind:      domain.UnitType,
		Name:      ts.Name.Name,
		Signature: p.formatTypeSignature(ts),
		Doc:       doc,
		Source:    extractLines(lines, start, end),
		Line:      start,
	}
}

// receiverTypeName resolves the named type a method is declared on,
// unwrapping pointers and type parameters.
func receiverTypeName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	for {
		switch e := t.(type) {
		case *ast.StarExpr:
			t = e.X
		case *ast.IndexExpr:
			t = e.X
		case *ast.IndexListExpr:
			t = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// formatFieldList formats a field list (parameters, results, receiver).
func (p *GoParser) formatFieldList(fl *ast.FieldList) string {
	if fl == nil || len(fl.List) == 0 {
		return ""
	}

	var parts []string
	for _, field := range fl.List {
		typeStr := p.formatExpr(field.Type)
		if len(field.Names) == 0 {
			parts = append(parts, typeStr)
		} else {
			var names []string
			for _, name := range field.Names {
				names = append(names, name.Name)
			}
			parts = append(parts, strings.Join(names, ", ")+" "+typeStr)
		}
	}
	return strings.Join(parts, ", ")
}

// formatExpr formats an expression to string.
func (p *GoParser) formatExpr(expr ast.Expr) string {
	var buf bytes.Buffer
	format.Node(&buf, token.NewFileSet(), expr)
	return buf.String()
}

// formatTypeSignature creates a signature for a type declaration.
func (p *GoParser) formatTypeSignature(ts *ast.TypeSpec) string {
	var sig strings.Builder
	sig.WriteString("type ")
	sig.WriteString(ts.Name.Name)
	sig.WriteString(" ")

	switch t := ts.Type.(type) {
	case *ast.StructType:
		sig.WriteString("struct")
	case *ast.InterfaceType:
		sig.WriteString("interface")
	case *ast.Ident:
		sig.WriteString(t.Name)
	default:
		sig.WriteString(p.formatExpr(ts.Type))
	}

	return sig.String()
}

// extractLines extracts lines from a slice (1-indexed, inclusive).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) {
		return ""
	}

	return strings.Join(lines[startLine-1:endLine], "\n")
}
