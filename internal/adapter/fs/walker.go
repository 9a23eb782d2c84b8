package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker scans a repository for source and documentation files using
// doublestar glob patterns. Returned paths are root-relative with slash
// separators, ready for use as cache keys.
type Walker struct {
	includes []string
	excludes []string
	docs     []string
}

// NewWalker creates a Walker over the given glob sets.
func NewWalker(includes, excludes, docs []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
		docs:     docs,
	}
}

// Sources returns source file paths under root in walk order.
func (w *Walker) Sources(root string) ([]string, error) {
	return w.walk(root, w.includes)
}

// Documents returns documentation file paths under root, root-level
// README files first, then docs trees, then the rest.
func (w *Walker) Documents(root string) ([]string, error) {
	files, err := w.walk(root, w.docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		return docRank(files[i]) < docRank(files[j])
	})
	return files, nil
}

func (w *Walker) walk(root string, patterns []string) ([]string, error) {
	var files []string

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.matchesAny(w.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.matchesAny(patterns, relPath) && !w.matchesAny(w.excludes, relPath) {
			files = append(files, relPath)
		}
		return nil
	})

	return files, err
}

func (w *Walker) matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func docRank(path string) int {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasPrefix(base, "readme") && !strings.Contains(path, "/"):
		return 0
	case strings.HasPrefix(base, "readme"):
		return 1
	case strings.HasPrefix(path, "docs/") || strings.HasPrefix(path, "doc/"):
		return 2
	default:
		return 3
	}
}

// OSReader reads files from the local filesystem.
type OSReader struct{}

func (OSReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
