package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// supportedExts are the source formats read from a mode directory.
var supportedExts = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

var markdownSeparators = []string{"\n## ", "\n### ", "\n#### ", "\n\n", "\n", " ", ""}

// sourceFiles lists supported files under dir, relative paths sorted. Files
// with other extensions are returned as skipped.
func sourceFiles(dir string) (files, skipped []string, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if supportedExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, filepath.ToSlash(rel))
		} else {
			skipped = append(skipped, filepath.ToSlash(rel))
		}
		return nil
	})
	sort.Strings(files)
	sort.Strings(skipped)
	return files, skipped, err
}

func splitterFor(name string, size, overlap int) textsplitter.TextSplitter {
	opts := []textsplitter.Option{
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	}
	if strings.EqualFold(filepath.Ext(name), ".md") {
		opts = append(opts, textsplitter.WithSeparators(markdownSeparators))
	}
	return textsplitter.NewRecursiveCharacter(opts...)
}

// loadChunks reads one file and splits it into non-empty chunks.
func loadChunks(ctx context.Context, path string, size, overlap int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []schema.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		st, err := f.Stat()
		if err != nil {
			return nil, err
		}
		docs, err = documentloaders.NewPDF(f, st.Size()).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load pdf: %w", err)
		}
	default:
		docs, err = documentloaders.NewText(f).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load text: %w", err)
		}
	}

	split, err := textsplitter.SplitDocuments(splitterFor(path, size, overlap), docs)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	out := make([]string, 0, len(split))
	for _, d := range split {
		if text := strings.TrimSpace(d.PageContent); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}
