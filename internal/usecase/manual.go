package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docgen/internal/adapter/chunker"
	"docgen/internal/adapter/evidence"
	"docgen/internal/adapter/llm"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// ManualOptions bound the manual map and merge stages. The same token
// and character pair limits both chunk packing and the merge loop.
type ManualOptions struct {
	MergeTokens        int
	MergeChars         int
	MaxMergeIterations int
	Workers            int
}

// ManualUseCase builds a user manual from repository documents: evidence
// index first, then chunked drafting under the chunk system prompt, a
// merge loop under the merge system prompt, one final compilation call,
// and a backfill pass for placeholder tokens the model emitted.
type ManualUseCase struct {
	llm    port.Summarizer
	store  port.ResponseStore
	tok    port.Tokenizer
	opts   ManualOptions
	logger *zap.Logger

	// OnChunk, when set, is called after each draft chunk completes.
	// Calls are serialized and done is monotonic.
	OnChunk func(done, total int)
}

// NewManualUseCase creates the manual generator. Zero option fields take
// defaults.
func NewManualUseCase(s port.Summarizer, store port.ResponseStore, tok port.Tokenizer, opts ManualOptions, logger *zap.Logger) *ManualUseCase {
	if opts.MergeTokens <= 0 {
		opts.MergeTokens = 2000
	}
	if opts.MergeChars <= 0 {
		opts.MergeChars = 6000
	}
	if opts.MaxMergeIterations <= 0 {
		opts.MaxMergeIterations = 8
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManualUseCase{llm: s, store: store, tok: tok, opts: opts, logger: logger}
}

// Build generates the manual for the given documents, caching every model
// response under keyPrefix. When the whole map stage fails the manual
// degrades to the keyword heuristic instead of erroring.
func (u *ManualUseCase) Build(ctx context.Context, keyPrefix string, docs []evidence.Doc) (domain.Manual, error) {
	combined := combineDocs(docs)
	idx := evidence.BuildIndex(docs)

	if combined == "" {
		return domain.Manual{Heuristic: true, Sections: evidence.InferSections(docs)}, nil
	}

	text, err := u.compile(ctx, keyPrefix, combined, docs)
	if err != nil {
		return domain.Manual{}, err
	}
	if text == "" {
		return domain.Manual{Heuristic: true, Sections: evidence.InferSections(docs)}, nil
	}

	text = u.backfill(ctx, keyPrefix, text, idx)
	return domain.Manual{Text: text}, nil
}

// compile runs the chunk, merge, and final stages. An empty return with
// nil error means every map call failed.
func (u *ManualUseCase) compile(ctx context.Context, keyPrefix, combined string, docs []evidence.Doc) (string, error) {
	if u.withinLimits(combined) {
		return cachedSummarize(ctx, u.llm, u.store, keyPrefix, combined, domain.RoleManual, llm.MergeSystemPrompt)
	}

	packer := chunker.NewPackerWithCharLimit(u.tok, u.opts.MergeTokens, u.opts.MergeChars)
	parts := packer.PackText(combined)
	u.logger.Debug("drafting manual chunks", zap.String("source", keyPrefix), zap.Int("chunks", len(parts)))

	partials := u.draftChunks(ctx, keyPrefix, parts)
	if len(partials) == 0 {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", nil
	}

	merged := strings.Join(partials, "\n\n")
	for d := 1; d <= u.opts.MaxMergeIterations && !u.withinLimits(merged); d++ {
		u.logger.Info("manual merge pass",
			zap.String("source", keyPrefix),
			zap.Int("pass", d),
			zap.Int("tokens", u.tok.CountTokens(merged)),
			zap.Int("chars", len(merged)))

		pieces := packer.PackText(merged)
		next := make([]string, 0, len(pieces))
		for _, piece := range pieces {
			logicalKey := fmt.Sprintf("%s:merge%d:chunk%d", keyPrefix, d, piece.Index)
			out, err := cachedSummarize(ctx, u.llm, u.store, logicalKey, piece.Text, domain.RoleDocstring, llm.MergeSystemPrompt)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				u.logger.Warn("manual merge chunk failed",
					zap.Int("chunk", piece.Index),
					zap.Int("total", len(pieces)),
					zap.String("source", keyPrefix),
					zap.Error(err))
				continue
			}
			next = append(next, out)
		}
		if len(next) == 0 {
			break
		}

		shrunk := strings.Join(next, "\n\n")
		noShrink := u.tok.CountTokens(shrunk) >= u.tok.CountTokens(merged)
		merged = shrunk
		if noShrink {
			u.logger.Warn("manual merge pass did not shrink", zap.String("source", keyPrefix), zap.Int("pass", d))
			break
		}
	}

	out, err := cachedSummarize(ctx, u.llm, u.store, keyPrefix+":final", merged, domain.RoleDocstring, llm.MergeSystemPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		u.logger.Warn("final manual merge failed, returning merged draft",
			zap.String("source", keyPrefix), zap.Error(err))
		return merged, nil
	}
	return out, nil
}

// draftChunks maps manual chunks through a bounded worker pool under the
// chunk system prompt. Output keeps input order; failures are dropped.
func (u *ManualUseCase) draftChunks(ctx context.Context, keyPrefix string, parts []domain.Chunk) []string {
	results := make([]string, len(parts))
	done := make([]bool, len(parts))

	var mu sync.Mutex
	completed := 0

	var g errgroup.Group
	g.SetLimit(u.opts.Workers)
	for i, c := range parts {
		i, c := i, c
		g.Go(func() error {
			logicalKey := fmt.Sprintf("%s:part%d", keyPrefix, c.Index)
			out, err := cachedSummarize(ctx, u.llm, u.store, logicalKey, c.Text, domain.RoleDocstring, llm.ChunkSystemPrompt)

			mu.Lock()
			completed++
			if u.OnChunk != nil {
				u.OnChunk(completed, len(parts))
			}
			mu.Unlock()

			if err != nil {
				u.logger.Warn("manual chunk drafting failed",
					zap.Int("chunk", c.Index),
					zap.Int("total", len(parts)),
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

	partials := make([]string, 0, len(parts))
	for i := range results {
		if done[i] {
			partials = append(partials, results[i])
		}
	}
	return partials
}

// backfill re-summarizes section evidence for each placeholder token the
// model left in the manual. Tokens without evidence stay for the renderer
// to strip.
func (u *ManualUseCase) backfill(ctx context.Context, keyPrefix, text string, idx domain.EvidenceIndex) string {
	for _, token := range evidence.FindPlaceholders(text) {
		section, ok := evidence.SectionFor(token)
		if !ok {
			continue
		}
		snips := idx.SectionSnippets[section]
		if len(snips) == 0 {
			continue
		}

		material := make([]string, 0, len(snips))
		for _, s := range snips {
			material = append(material, s.Text)
		}
		logicalKey := keyPrefix + ":backfill:" + section
		out, err := cachedSummarize(ctx, u.llm, u.store, logicalKey, strings.Join(material, "\n\n"), domain.RoleDocstring, llm.ChunkSystemPrompt)
		if err != nil {
			u.logger.Warn("placeholder backfill failed",
				zap.String("section", section),
				zap.String("source", keyPrefix),
				zap.Error(err))
			continue
		}
		text = strings.ReplaceAll(text, token, out)
	}
	return text
}

func (u *ManualUseCase) withinLimits(text string) bool {
	return u.tok.CountTokens(text) <= u.opts.MergeTokens && len(text) <= u.opts.MergeChars
}

func combineDocs(docs []evidence.Doc) string {
	var parts []string
	for _, d := range docs {
		if t := strings.TrimSpace(d.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
