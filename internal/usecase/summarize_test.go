package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/memstore"
	"docgen/internal/adapter/tokenizer"
	"docgen/internal/domain"
)

type llmCall struct {
	Text   string
	Role   string
	System string
}

type fakeLLM struct {
	mu      sync.Mutex
	calls   []llmCall
	respond func(text, role, system string) (string, error)
}

func (f *fakeLLM) Summarize(ctx context.Context, text, role string) (string, error) {
	return f.SummarizeWithSystem(ctx, text, role, llm.SystemPrompt)
}

func (f *fakeLLM) SummarizeWithSystem(ctx context.Context, text, role, system string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.calls = append(f.calls, llmCall{Text: text, Role: role, System: system})
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(text, role, system)
	}
	return "summary", nil
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLLM) countRole(role string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Role == role {
			n++
		}
	}
	return n
}

func (f *fakeLLM) countSystem(system string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.System == system {
			n++
		}
	}
	return n
}

// manyBlocks builds n two-token paragraphs separated by blank lines.
func manyBlocks(n int) string {
	blocks := make([]string, n)
	for i := range blocks {
		blocks[i] = fmt.Sprintf("blk %03d", i+1)
	}
	return strings.Join(blocks, "\n\n")
}

func isMergePrompt(text string) bool {
	return strings.HasPrefix(text, "You are a documentation generator")
}

func newTestSummarizer(fake *fakeLLM, store *memstore.MemoryStore) *SummarizeUseCase {
	opts := SummarizeOptions{
		MaxContextTokens: 300,
		ChunkTokens:      8,
		Workers:          3,
	}
	return NewSummarizeUseCase(fake, store, tokenizer.NewFallback(), opts, nil)
}

func TestSummarizeDirectPathCaches(t *testing.T) {
	fake := &fakeLLM{}
	store := memstore.NewMemoryStore()
	uc := newTestSummarizer(fake, store)

	out, err := uc.SummarizeWithSystem(context.Background(), "pkg/a.go", "tiny block", domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if out != "summary" {
		t.Fatalf("expected direct summary, got %q", out)
	}
	if fake.callCount() != 1 {
		t.Fatalf("expected 1 call, got %d", fake.callCount())
	}

	// Same key and content: served from cache.
	out, err = uc.SummarizeWithSystem(context.Background(), "pkg/a.go", "tiny block", domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("cached Summarize failed: %v", err)
	}
	if out != "summary" || fake.callCount() != 1 {
		t.Fatalf("expected cache hit, got %q after %d calls", out, fake.callCount())
	}

	// Different key, same content: distinct fingerprint.
	if _, err := uc.SummarizeWithSystem(context.Background(), "pkg/b.go", "tiny block", domain.RoleDocstring, "s"); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if fake.callCount() != 2 {
		t.Fatalf("expected distinct fingerprint to miss, got %d calls", fake.callCount())
	}
}

func TestSummarizeMapReduce(t *testing.T) {
	fake := &fakeLLM{
		respond: func(text, role, system string) (string, error) {
			if isMergePrompt(text) {
				return "merged result", nil
			}
			return "ok", nil
		},
	}
	store := memstore.NewMemoryStore()
	uc := newTestSummarizer(fake, store)

	// 160 blocks of 2 tokens overflow the 300-token context; at budget 8
	// the packer emits 53 chunks of three blocks plus one remainder.
	text := manyBlocks(160)

	out, err := uc.SummarizeWithSystem(context.Background(), "pkg/big.go", text, domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if out != "merged result" {
		t.Fatalf("expected merged result, got %q", out)
	}
	if got := fake.callCount(); got != 55 {
		t.Fatalf("expected 54 map calls and 1 merge call, got %d", got)
	}
	if store.Len() != 55 {
		t.Fatalf("expected 55 cached responses, got %d", store.Len())
	}
	if got := fake.countRole(domain.RoleDocstring); got != 55 {
		t.Fatalf("expected every call under the docstring role, got %d", got)
	}

	// Warm rerun with a fresh backend: everything resolves from cache.
	fresh := &fakeLLM{}
	warm := newTestSummarizer(fresh, store)
	out, err = warm.SummarizeWithSystem(context.Background(), "pkg/big.go", text, domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("warm Summarize failed: %v", err)
	}
	if out != "merged result" {
		t.Fatalf("expected cached merged result, got %q", out)
	}
	if fresh.callCount() != 0 {
		t.Fatalf("expected zero backend calls on warm rerun, got %d", fresh.callCount())
	}
}

func TestSummarizeDropsFailedChunks(t *testing.T) {
	fake := &fakeLLM{
		respond: func(text, role, system string) (string, error) {
			if isMergePrompt(text) {
				return "merged result", nil
			}
			if strings.Contains(text, "blk 007") {
				return "", errors.New("backend hiccup")
			}
			return "ok", nil
		},
	}
	store := memstore.NewMemoryStore()
	uc := newTestSummarizer(fake, store)

	out, err := uc.SummarizeWithSystem(context.Background(), "pkg/big.go", manyBlocks(160), domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if out != "merged result" {
		t.Fatalf("expected merged result, got %q", out)
	}
	// 54 map attempts with one failure, then one merge.
	if got := fake.callCount(); got != 55 {
		t.Fatalf("expected 55 calls, got %d", got)
	}
	if store.Len() != 54 {
		t.Fatalf("expected failed chunk to stay uncached, got %d entries", store.Len())
	}
}

func TestSummarizeAllChunksFail(t *testing.T) {
	fake := &fakeLLM{
		respond: func(text, role, system string) (string, error) {
			return "", errors.New("backend down")
		},
	}
	uc := newTestSummarizer(fake, memstore.NewMemoryStore())

	_, err := uc.SummarizeWithSystem(context.Background(), "pkg/big.go", manyBlocks(160), domain.RoleDocstring, "s")
	if !errors.Is(err, ErrNoPartials) {
		t.Fatalf("expected ErrNoPartials, got %v", err)
	}
	if got := fake.callCount(); got != 54 {
		t.Fatalf("expected no merge after total map failure, got %d calls", got)
	}
}

func TestSummarizeMergeFailureReturnsJoined(t *testing.T) {
	fake := &fakeLLM{
		respond: func(text, role, system string) (string, error) {
			if isMergePrompt(text) {
				return "", errors.New("merge refused")
			}
			return "ok", nil
		},
	}
	uc := newTestSummarizer(fake, memstore.NewMemoryStore())

	out, err := uc.SummarizeWithSystem(context.Background(), "pkg/big.go", manyBlocks(160), domain.RoleDocstring, "s")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	parts := make([]string, 54)
	for i := range parts {
		parts[i] = "ok"
	}
	if out != strings.Join(parts, "\n") {
		t.Fatalf("expected joined partials after merge failure, got %q", out)
	}
}

func TestSummarizeUnitAtomic(t *testing.T) {
	fake := &fakeLLM{}
	store := memstore.NewMemoryStore()
	uc := newTestSummarizer(fake, store)

	unit := domain.SourceUnit{Kind: domain.UnitModule, Name: "m", Source: "func a() { a1 }"}

	out, err := uc.SummarizeUnit(context.Background(), "pkg/a.go", unit, domain.RoleModule)
	if err != nil {
		t.Fatalf("SummarizeUnit failed: %v", err)
	}
	if out != "summary" || fake.callCount() != 1 {
		t.Fatalf("expected one direct call, got %q after %d calls", out, fake.callCount())
	}
	fake.mu.Lock()
	if fake.calls[0].Text != unit.Source {
		t.Errorf("expected the unit source verbatim, got %q", fake.calls[0].Text)
	}
	if fake.calls[0].System != llm.SystemPrompt {
		t.Errorf("expected the default system prompt, got %q", fake.calls[0].System)
	}
	fake.mu.Unlock()

	// Warm rerun with a fresh backend resolves from cache.
	fresh := &fakeLLM{}
	warm := newTestSummarizer(fresh, store)
	if _, err := warm.SummarizeUnit(context.Background(), "pkg/a.go", unit, domain.RoleModule); err != nil {
		t.Fatalf("warm SummarizeUnit failed: %v", err)
	}
	if fresh.callCount() != 0 {
		t.Fatalf("expected zero backend calls on warm rerun, got %d", fresh.callCount())
	}
}

func TestSummarizeUnitSplitsOnDeclarations(t *testing.T) {
	fake := &fakeLLM{
		respond: func(text, role, system string) (string, error) {
			if isMergePrompt(text) {
				return "merged result", nil
			}
			return "ok", nil
		},
	}
	store := memstore.NewMemoryStore()
	uc := newTestSummarizer(fake, store)

	fns := []string{"func a() { a1 }", "func b() { b1 }", "func c() { c1 }"}
	module := domain.SourceUnit{
		Kind:   domain.UnitModule,
		Name:   "m",
		Source: strings.Join(fns, "\n\n"),
	}
	for _, src := range fns {
		module.Children = append(module.Children, domain.SourceUnit{
			Kind:   domain.UnitFunction,
			Name:   src[5:6],
			Source: src,
		})
	}

	out, err := uc.SummarizeUnit(context.Background(), "pkg/m.go", module, domain.RoleModule)
	if err != nil {
		t.Fatalf("SummarizeUnit failed: %v", err)
	}
	if out != "merged result" {
		t.Fatalf("expected merged result, got %q", out)
	}
	if got := fake.callCount(); got != 4 {
		t.Fatalf("expected 3 map calls and 1 merge call, got %d", got)
	}
	if got := fake.countRole(domain.RoleModule); got != 3 {
		t.Fatalf("expected 3 module-role map calls, got %d", got)
	}

	// Each map call carries exactly one declaration.
	var mapped []string
	fake.mu.Lock()
	for _, c := range fake.calls {
		if !isMergePrompt(c.Text) {
			mapped = append(mapped, c.Text)
		}
	}
	fake.mu.Unlock()
	sort.Strings(mapped)
	if strings.Join(mapped, "|") != strings.Join(fns, "|") {
		t.Errorf("map calls do not match declarations: %v", mapped)
	}
}

func TestSummarizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeLLM{}
	uc := newTestSummarizer(fake, memstore.NewMemoryStore())

	_, err := uc.SummarizeWithSystem(ctx, "pkg/big.go", manyBlocks(160), domain.RoleDocstring, "s")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
