package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docgen/config"
	"docgen/internal/adapter/chunker"
	"docgen/internal/adapter/fs"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/memstore"
	"docgen/internal/adapter/render"
	"docgen/internal/adapter/store"
	"docgen/internal/adapter/tokenizer"
	"docgen/internal/port"
	"docgen/internal/usecase"
)

var (
	generateResume bool
	generateFlat   bool
	generateOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate module documentation for a repository",
	Long: `Scan a repository, summarize each source file bottom-up (functions,
then types over their method summaries, then the module), and render
markdown pages plus a project index. Responses are cached in
.docgen/cache.db within the target directory.

Examples:
  docgen generate .            # Document the current directory
  docgen generate --resume .   # Continue an interrupted run
  docgen generate --flat .     # One summary per module, no unit docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateResume, "resume", false, "resume an interrupted run from the progress ledger")
	generateCmd.Flags().BoolVar(&generateFlat, "flat", false, "summarize whole modules without per-unit docs")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	st, err := openStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	tok := tokenizer.New(logger)
	client := newClient()
	sum := usecase.NewSummarizeUseCase(client, st, tok, summarizeOptions(), logger)
	walker := fs.NewWalker(cfg.Scan.Include, cfg.Scan.Exclude, cfg.Scan.Docs)
	parsers := chunker.NewRegistry(chunker.NewGoParser())

	gen := usecase.NewGenerateUseCase(walker, fs.OSReader{}, parsers, sum, st, logger)
	gen.Flat = generateFlat

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	startTime := time.Now()
	gen.OnModule = func(done, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Documenting[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)

		if remaining := total - done; remaining > 0 {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Documenting[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	doc, err := gen.Run(cmd.Context(), path, generateResume)
	if err != nil {
		return fmt.Errorf("documentation run failed: %w", err)
	}

	indexPath, err := render.NewMarkdown(outputDir(path, generateOut)).WriteProject(doc)
	if err != nil {
		return fmt.Errorf("failed to render documentation: %w", err)
	}

	fmt.Printf("\nDocumentation complete:\n")
	fmt.Printf("  Modules documented: %d\n", len(doc.Modules))
	fmt.Printf("  Model:              %s\n", client.ModelName())
	fmt.Printf("\nIndex written to: %s\n", indexPath)
	return nil
}

// openStore opens the response cache for path. With caching disabled the
// run still works, it just holds responses in memory.
func openStore(path string) (port.ResponseStore, error) {
	if !cfg.Cache.Enabled {
		return memstore.NewMemoryStore(), nil
	}
	if err := config.EnsureCacheDir(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	st, err := store.NewBoltStore(config.CachePath(path, cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	return st, nil
}

// newClient builds the summarizer endpoint from config.
func newClient() *llm.Client {
	return llm.NewClient(llm.Options{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Retries:     cfg.LLM.Retries,
	}, logger)
}

func summarizeOptions() usecase.SummarizeOptions {
	return usecase.SummarizeOptions{
		MaxContextTokens: cfg.Budgets.MaxContextTokens,
		ChunkTokens:      cfg.Budgets.ChunkTokens,
		MaxMergeDepth:    cfg.Budgets.MaxMergeIterations,
		Workers:          cfg.Workers,
	}
}

// outputDir resolves the output directory: the flag wins over config, and
// relative paths land inside the documented repository.
func outputDir(path, flag string) string {
	dir := flag
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(path, dir)
	}
	return dir
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
