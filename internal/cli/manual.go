package cli

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docgen/internal/adapter/evidence"
	"docgen/internal/adapter/fs"
	"docgen/internal/adapter/render"
	"docgen/internal/adapter/tokenizer"
	"docgen/internal/usecase"
)

var manualOut string

var manualCmd = &cobra.Command{
	Use:   "manual [path]",
	Short: "Build a user manual from repository documentation",
	Long: `Collect the repository's documentation files (plus module pages from a
previous generate run, when present), draft manual sections chunk by
chunk, and merge them into one guide. Sections without evidence are
backfilled or marked "No information available." When the model is
unreachable the manual degrades to keyword-matched evidence.

Examples:
  docgen manual .              # Manual for the current directory
  docgen manual -o out/docs .  # Write manual.md somewhere else`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManual,
}

func init() {
	manualCmd.Flags().StringVarP(&manualOut, "out", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(manualCmd)
}

func runManual(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	docs, err := collectManualDocs(path)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documentation files found under %s", path)
	}

	st, err := openStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	man := usecase.NewManualUseCase(newClient(), st, tokenizer.New(logger), usecase.ManualOptions{
		MergeTokens:        cfg.Budgets.MergeTokens,
		MergeChars:         cfg.Budgets.MergeChars,
		MaxMergeIterations: cfg.Budgets.MaxMergeIterations,
		Workers:            cfg.Workers,
	}, logger)

	// The bar appears only when the documents need chunked drafting;
	// a manual that fits one call never reports progress.
	var bar *progressbar.ProgressBar
	man.OnChunk = func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Drafting[reset]"),
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
	}

	fmt.Printf("Building manual from %d documents...\n", len(docs))

	result, err := man.Build(cmd.Context(), "manual", docs)
	if err != nil {
		return fmt.Errorf("manual build failed: %w", err)
	}

	dest, err := render.NewMarkdown(outputDir(path, manualOut)).WriteManual(result)
	if err != nil {
		return fmt.Errorf("failed to render manual: %w", err)
	}

	if result.Heuristic {
		fmt.Println("Model produced no draft; manual built from keyword evidence only.")
	}
	fmt.Printf("Manual written to: %s\n", dest)
	return nil
}

// collectManualDocs gathers the manual inputs: every documentation file
// the scan globs match, README first. Pages from a previous generate run
// live in the output directory and match the same globs; only a previous
// manual is skipped to keep the build off its own output.
func collectManualDocs(path string) ([]evidence.Doc, error) {
	walker := fs.NewWalker(cfg.Scan.Include, cfg.Scan.Exclude, cfg.Scan.Docs)
	reader := fs.OSReader{}

	rels, err := walker.Documents(path)
	if err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}

	var docs []evidence.Doc
	for _, rel := range rels {
		if filepath.Base(rel) == "manual.md" {
			continue
		}
		text, err := reader.ReadFile(filepath.Join(path, rel))
		if err != nil {
			logger.Warn("failed to read document", zap.String("path", rel), zap.Error(err))
			continue
		}
		docs = append(docs, evidence.Doc{Path: rel, Text: text, FromDoc: true})
	}
	return docs, nil
}
