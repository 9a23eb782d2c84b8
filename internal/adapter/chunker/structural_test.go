package chunker

import (
	"strings"
	"testing"

	"docgen/internal/adapter/tokenizer"
	"docgen/internal/domain"
)

func TestPackUnitAtomicWhenFits(t *testing.T) {
	tok := tokenizer.NewFallback()
	file := "func a() {\n\treturn 1\n}"
	module := domain.SourceUnit{
		Kind:   domain.UnitModule,
		Name:   "m",
		Source: file,
		Children: []domain.SourceUnit{
			{Kind: domain.UnitFunction, Name: "a", Source: file},
		},
	}

	chunks := NewPacker(tok, 1000).PackUnit(module)

	if len(chunks) != 1 {
		t.Fatalf("expected a fitting module to stay one chunk, got %d", len(chunks))
	}
	if chunks[0].Text != file {
		t.Errorf("atomic chunk is not the module source: %q", chunks[0].Text)
	}
}

func TestPackUnitDescendsInDeclarationOrder(t *testing.T) {
	tok := tokenizer.NewFallback()
	fnA := "func a() {\n\treturn 1\n}"
	fnB := "func b() {\n\treturn 2\n}"
	file := fnA + "\n\n" + fnB
	module := domain.SourceUnit{
		Kind:   domain.UnitModule,
		Name:   "m",
		Source: file,
		Children: []domain.SourceUnit{
			{Kind: domain.UnitFunction, Name: "a", Source: fnA},
			{Kind: domain.UnitFunction, Name: "b", Source: fnB},
		},
	}

	budget := tok.CountTokens(fnA)
	if n := tok.CountTokens(fnB); n > budget {
		budget = n
	}
	if tok.CountTokens(file) <= budget {
		t.Fatalf("test setup: file fits the per-function budget %d", budget)
	}

	chunks := NewPacker(tok, budget).PackUnit(module)

	if len(chunks) != 2 {
		t.Fatalf("expected one chunk per function, got %d", len(chunks))
	}
	if chunks[0].Text != fnA || chunks[1].Text != fnB {
		t.Errorf("chunks do not match function sources: %q / %q", chunks[0].Text, chunks[1].Text)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}

func TestPackUnitTypeJoinsMethods(t *testing.T) {
	tok := tokenizer.NewFallback()
	decl := "type T struct {\n\tn int\n}"
	one := "func (t T) One() int {\n\treturn t.n\n}"
	two := "func (t T) Two() int {\n\treturn t.n + t.n\n}"
	typ := domain.SourceUnit{
		Kind:      domain.UnitType,
		Name:      "T",
		Signature: "type T struct",
		Source:    decl,
		Children: []domain.SourceUnit{
			{Kind: domain.UnitMethod, Name: "One", Source: one},
			{Kind: domain.UnitMethod, Name: "Two", Source: two},
		},
	}

	joined := decl + "\n\n" + one + "\n\n" + two
	if got := UnitText(typ); got != joined {
		t.Fatalf("unit text does not join declaration and methods: %q", got)
	}

	chunks := NewPacker(tok, 1000).PackUnit(typ)
	if len(chunks) != 1 || chunks[0].Text != joined {
		t.Fatalf("expected a fitting type to pack atomically with its methods")
	}

	budget := 0
	for _, piece := range []string{decl, one, two} {
		if n := tok.CountTokens(piece); n > budget {
			budget = n
		}
	}

	chunks = NewPacker(tok, budget).PackUnit(typ)
	want := []string{decl, one, two}
	if len(chunks) != len(want) {
		t.Fatalf("expected declaration plus methods, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.Text != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, c.Text, want[i])
		}
	}
}

func TestPackUnitOversizedLeafCharSplit(t *testing.T) {
	tok := tokenizer.NewFallback()
	body := strings.TrimSpace(strings.Repeat("call(x)\n", 40))
	leaf := domain.SourceUnit{Kind: domain.UnitFunction, Name: "big", Source: body}

	chunks := NewPacker(tok, 10).PackUnit(leaf)

	if len(chunks) < 2 {
		t.Fatalf("expected the character fallback to split the leaf, got %d chunks", len(chunks))
	}
	var texts []string
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			t.Error("fallback produced a blank chunk")
		}
		texts = append(texts, c.Text)
	}
	// Slices may cut inside a word; only whitespace is lost to trimming.
	strip := func(s string) string { return strings.Join(strings.Fields(s), "") }
	if strip(strings.Join(texts, "")) != strip(body) {
		t.Errorf("fallback lost content")
	}
}

func TestPackUnitParsedGoFile(t *testing.T) {
	src := `package demo

type Counter struct {
	n int
}

func (c *Counter) Add(delta int) {
	c.n += delta
}

func Reset(c *Counter) {
	c.n = 0
}
`
	unit, err := NewGoParser().Parse("demo.go", src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(unit.Children) != 2 {
		t.Fatalf("expected type and function children, got %d", len(unit.Children))
	}

	tok := tokenizer.NewFallback()

	whole := NewPacker(tok, 1000).PackUnit(unit)
	if len(whole) != 1 {
		t.Fatalf("expected the whole file in one chunk, got %d", len(whole))
	}
	if whole[0].Text != src {
		t.Errorf("atomic chunk is not the file itself")
	}

	typeText := UnitText(unit.Children[0])
	resetText := unit.Children[1].Source
	budget := tok.CountTokens(typeText)
	if n := tok.CountTokens(resetText); n > budget {
		budget = n
	}
	if tok.CountTokens(src) <= budget {
		t.Fatalf("test setup: file fits the per-declaration budget %d", budget)
	}

	chunks := NewPacker(tok, budget).PackUnit(unit)
	if len(chunks) != 2 {
		t.Fatalf("expected one chunk per declaration, got %d", len(chunks))
	}
	if chunks[0].Text != typeText {
		t.Errorf("first chunk should keep the type with its method: %q", chunks[0].Text)
	}
	if chunks[1].Text != resetText {
		t.Errorf("second chunk should be the free function: %q", chunks[1].Text)
	}
}

func TestPackUnitBlankUnit(t *testing.T) {
	if chunks := NewPacker(tokenizer.NewFallback(), 10).PackUnit(domain.SourceUnit{}); len(chunks) != 0 {
		t.Errorf("expected no chunks for an empty unit, got %d", len(chunks))
	}
}
