package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docgen/internal/adapter/chunker"
	"docgen/internal/adapter/llm"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// ErrNoPartials reports that every chunk in the map stage failed.
var ErrNoPartials = errors.New("no chunk summaries produced")

const mergeInstructions = "You are a documentation generator.\n\n" +
	"Combine the following summaries into a single technical paragraph.\n" +
	"Do not critique, evaluate, or offer suggestions.\n" +
	"Do not speculate or use uncertain language.\n" +
	"Only summarize what the text explicitly states.\n\n"

// SummarizeOptions bound the map and reduce stages.
type SummarizeOptions struct {
	MaxContextTokens int
	ChunkTokens      int
	MaxMergeDepth    int
	Workers          int
}

// SummarizeUseCase condenses arbitrary text under a context budget:
// oversized input is split and packed, each chunk summarized through the
// cache (map), and partial summaries merged recursively until the result
// fits (reduce).
type SummarizeUseCase struct {
	llm    port.Summarizer
	store  port.ResponseStore
	tok    port.Tokenizer
	opts   SummarizeOptions
	logger *zap.Logger
}

// NewSummarizeUseCase creates the orchestrator. Zero option fields take
// defaults.
func NewSummarizeUseCase(s port.Summarizer, store port.ResponseStore, tok port.Tokenizer, opts SummarizeOptions, logger *zap.Logger) *SummarizeUseCase {
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = 4096
	}
	if opts.ChunkTokens <= 0 {
		opts.ChunkTokens = 2000
	}
	if opts.MaxMergeDepth <= 0 {
		opts.MaxMergeDepth = 8
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummarizeUseCase{llm: s, store: store, tok: tok, opts: opts, logger: logger}
}

// Summarize condenses text for role, caching every model response under
// keyPrefix.
func (u *SummarizeUseCase) Summarize(ctx context.Context, keyPrefix, text, role string) (string, error) {
	return u.SummarizeWithSystem(ctx, keyPrefix, text, role, llm.SystemPrompt)
}

// SummarizeWithSystem is Summarize under an explicit system prompt.
func (u *SummarizeUseCase) SummarizeWithSystem(ctx context.Context, keyPrefix, text, role, system string) (string, error) {
	overhead := u.tok.CountTokens(system) + u.tok.CountTokens(llm.BuildPrompt(role, ""))
	available := u.opts.MaxContextTokens - overhead
	if available < 1 {
		available = 1
	}

	if u.tok.CountTokens(text) <= available {
		return u.cachedCall(ctx, keyPrefix, text, role, system)
	}

	budget := u.opts.ChunkTokens
	if budget > available {
		budget = available
	}
	chunks := chunker.NewPacker(u.tok, budget).PackText(text)
	if len(chunks) == 0 {
		return "", ErrNoPartials
	}
	u.logger.Debug("mapping chunks",
		zap.String("source", keyPrefix), zap.Int("chunks", len(chunks)))

	partials := u.mapChunks(ctx, keyPrefix, chunks, role, system)
	if len(partials) == 0 {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrNoPartials
	}

	return u.reduce(ctx, keyPrefix, partials, system, available, 0)
}

// SummarizeUnit condenses a parsed declaration tree for role. Units that
// fit the chunk budget stay atomic; oversized ones split along
// declaration boundaries instead of characters, and the chunks run
// through the same map and reduce stages as linear text.
func (u *SummarizeUseCase) SummarizeUnit(ctx context.Context, keyPrefix string, unit domain.SourceUnit, role string) (string, error) {
	system := llm.SystemPrompt
	overhead := u.tok.CountTokens(system) + u.tok.CountTokens(llm.BuildPrompt(role, ""))
	available := u.opts.MaxContextTokens - overhead
	if available < 1 {
		available = 1
	}

	budget := u.opts.ChunkTokens
	if budget > available {
		budget = available
	}
	chunks := chunker.NewPacker(u.tok, budget).PackUnit(unit)
	if len(chunks) == 0 {
		return "", ErrNoPartials
	}
	if len(chunks) == 1 && chunks[0].Tokens <= available {
		return u.cachedCall(ctx, keyPrefix, chunks[0].Text, role, system)
	}
	u.logger.Debug("mapping structural chunks",
		zap.String("source", keyPrefix), zap.Int("chunks", len(chunks)))

	partials := u.mapChunks(ctx, keyPrefix, chunks, role, system)
	if len(partials) == 0 {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrNoPartials
	}

	return u.reduce(ctx, keyPrefix, partials, system, available, 0)
}

func (u *SummarizeUseCase) cachedCall(ctx context.Context, logicalKey, text, role, system string) (string, error) {
	return cachedSummarize(ctx, u.llm, u.store, logicalKey, text, role, system)
}

// cachedSummarize resolves one model call through the response cache.
func cachedSummarize(ctx context.Context, s port.Summarizer, store port.ResponseStore, logicalKey, text, role, system string) (string, error) {
	key := domain.Fingerprint(logicalKey, text)
	if cached, ok := store.Get(key); ok {
		return cached, nil
	}
	out, err := s.SummarizeWithSystem(ctx, text, role, system)
	if err != nil {
		return "", err
	}
	if err := store.Set(key, out); err != nil {
		return "", fmt.Errorf("failed to cache response: %w", err)
	}
	return out, nil
}

// mapChunks summarizes chunks through a bounded worker pool. Results keep
// input order; a failed chunk is logged and dropped.
func (u *SummarizeUseCase) mapChunks(ctx context.Context, keyPrefix string, chunks []domain.Chunk, role, system string) []string {
	results := make([]string, len(chunks))
	done := make([]bool, len(chunks))

	var g errgroup.Group
	g.SetLimit(u.opts.Workers)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			logicalKey := fmt.Sprintf("%s:part%d", keyPrefix, c.Index)
			out, err := u.cachedCall(ctx, logicalKey, c.Text, role, system)
			if err != nil {
				u.logger.Warn("chunk summarization failed",
					zap.Int("chunk", c.Index),
					zap.Int("total", len(chunks)),
					zap.String("source", keyPrefix),
					zap.Error(err))
				return nil
			}
			results[i] = out
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	partials := make([]string, 0, len(chunks))
	for i := range results {
		if done[i] {
			partials = append(partials, results[i])
		}
	}
	return partials
}

// reduce merges partial summaries until they fit one merge call. Fuses:
// a depth cap, a no-shrink check, and rerouting a single oversized item
// through the chunked path instead of looping on it.
func (u *SummarizeUseCase) reduce(ctx context.Context, keyPrefix string, items []string, system string, available, depth int) (string, error) {
	if depth >= u.opts.MaxMergeDepth {
		u.logger.Warn("merge depth exceeded, returning joined partials",
			zap.String("source", keyPrefix), zap.Int("depth", depth))
		return strings.Join(items, "\n"), nil
	}

	prompt := mergeInstructions + bulletList(items)
	if u.tok.CountTokens(prompt) <= available {
		out, err := u.cachedCall(ctx, fmt.Sprintf("%s:merge%d", keyPrefix, depth), prompt, domain.RoleDocstring, system)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			u.logger.Warn("merge failed, returning joined partials",
				zap.String("source", keyPrefix), zap.Error(err))
			return strings.Join(items, "\n"), nil
		}
		return out, nil
	}

	if len(items) == 1 {
		solo := fmt.Sprintf("%s:merge%d:solo", keyPrefix, depth)
		return u.SummarizeWithSystem(ctx, solo, items[0], domain.RoleDocstring, system)
	}

	mergeBudget := available - u.tok.CountTokens(mergeInstructions)
	if mergeBudget < 1 {
		mergeBudget = 1
	}
	groups := groupUnderBudget(u.tok, items, mergeBudget)

	merged := make([]string, 0, len(groups))
	for _, grp := range groups {
		out, err := u.reduce(ctx, keyPrefix, grp, system, available, depth+1)
		if err != nil {
			return "", err
		}
		merged = append(merged, out)
	}

	if u.tok.CountTokens(bulletList(merged)) >= u.tok.CountTokens(bulletList(items)) {
		u.logger.Warn("merge iteration did not shrink, returning joined partials",
			zap.String("source", keyPrefix), zap.Int("depth", depth))
		return strings.Join(merged, "\n"), nil
	}

	return u.reduce(ctx, keyPrefix, merged, system, available, depth+1)
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, p := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(p)
	}
	return b.String()
}

// groupUnderBudget packs items greedily by their bullet-line token cost.
func groupUnderBudget(tok port.Tokenizer, items []string, budget int) [][]string {
	var groups [][]string
	var current []string
	currentTokens := 0

	for _, p := range items {
		cost := tok.CountTokens("- " + p + "\n")
		if len(current) > 0 && currentTokens+cost > budget {
			groups = append(groups, current)
			current = []string{p}
			currentTokens = cost
			continue
		}
		current = append(current, p)
		currentTokens += cost
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
