package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/config"
	"docgen/internal/adapter/store"
)

var cacheValues bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the response cache",
}

var cacheDumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "List cached responses",
	Long: `Print every cache key, in key order. Keys combine the logical
position (file, chunk, merge pass) with a content hash, so a changed
source shows up as a new key.

Examples:
  docgen cache dump .           # Keys only
  docgen cache dump --values .  # Keys with their responses`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheDump,
}

var cacheClearProgressCmd = &cobra.Command{
	Use:   "clear-progress [path]",
	Short: "Reset the progress ledger",
	Long: `Drop every progress entry so the next generate run starts from the
first module. Cached responses are kept, so already-summarized chunks
still resolve without model calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClearProgress,
}

func init() {
	cacheDumpCmd.Flags().BoolVar(&cacheValues, "values", false, "print the cached responses, not just keys")
	cacheCmd.AddCommand(cacheDumpCmd)
	cacheCmd.AddCommand(cacheClearProgressCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openExistingCache opens the bolt cache for path without creating one.
func openExistingCache(path string) (*store.BoltStore, error) {
	if !cfg.Cache.Enabled {
		return nil, fmt.Errorf("cache is disabled in config")
	}
	dbPath := config.CachePath(path, cfg)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no cache at %s", dbPath)
	}
	st, err := store.NewBoltStore(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	return st, nil
}

func runCacheDump(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	st, err := openExistingCache(path)
	if err != nil {
		return err
	}
	defer st.Close()

	n := 0
	err = st.Responses(func(key, value string) error {
		if cacheValues {
			fmt.Printf("%s\n%s\n\n", key, value)
		} else {
			fmt.Println(key)
		}
		n++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	fmt.Printf("\n%d cached responses\n", n)
	return nil
}

func runCacheClearProgress(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	st, err := openExistingCache(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ClearProgress(); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	fmt.Println("Progress ledger cleared.")
	return nil
}
