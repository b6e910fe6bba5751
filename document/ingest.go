package document

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultPatterns matches the document kinds the pipeline understands.
var defaultPatterns = []string{"**/*.xml", "**/*.xsl", "**/*.xslt", "**/*.xsd"}

// LoadDir ingests every matching file under dir into the store.
// Patterns are doublestar globs relative to dir; nil uses the defaults.
// Returns the ingested documents in walk order.
func LoadDir(store *Store, dir string, patterns []string, logger *slog.Logger) ([]*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	fsys := os.DirFS(dir)
	var docs []*Document

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !matchesAny(patterns, path) {
			return nil
		}

		content, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		name := filepath.Base(path)
		doc := store.Put(name, KindForName(name), content)
		docs = append(docs, doc)
		logger.Debug("Ingested document",
			"name", name,
			"kind", doc.Kind,
			"bytes", len(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load dir %s: %w", dir, err)
	}

	logger.Info("Document directory loaded", "dir", dir, "count", len(docs))
	return docs, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
