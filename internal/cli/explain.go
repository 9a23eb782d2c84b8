package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docgen/internal/adapter/evidence"
	"docgen/internal/adapter/fs"
	"docgen/internal/adapter/render"
)

var explainCmd = &cobra.Command{
	Use:   "explain [path]",
	Short: "Infer manual sections from keyword evidence, no LLM",
	Long: `Scan documentation and sources for section keywords (how to run,
inputs, outputs, requirements, examples) and print the matched evidence
as a markdown section map. Works offline; useful as a preview of what
the manual command has to work with.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	docs, err := collectManualDocs(path)
	if err != nil {
		return err
	}

	// Sources count as evidence too, ranked behind documentation.
	walker := fs.NewWalker(cfg.Scan.Include, cfg.Scan.Exclude, cfg.Scan.Docs)
	reader := fs.OSReader{}
	rels, err := walker.Sources(path)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	for _, rel := range rels {
		text, err := reader.ReadFile(filepath.Join(path, rel))
		if err != nil {
			continue
		}
		docs = append(docs, evidence.Doc{Path: rel, Text: text})
	}

	if len(docs) == 0 {
		return fmt.Errorf("nothing to explain under %s", path)
	}

	sections := evidence.InferSections(docs)
	fmt.Print(render.SectionsPage(filepath.Base(path), sections))
	return nil
}
