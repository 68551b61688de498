// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/wikigraph/internal/httputil"
)

// Uploader uploads one RDF file.
type Uploader interface {
	UploadFile(ctx context.Context, path string) error
}

// LoadResult holds the outcome of a load run.
type LoadResult struct {
	Loaded []string
	Failed map[string]error
}

// Total returns the number of files attempted.
func (r LoadResult) Total() int {
	return len(r.Loaded) + len(r.Failed)
}

// HasFailures reports whether any file failed to upload.
func (r LoadResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// ResolveFiles expands patterns into an ordered, de-duplicated file list.
// Plain paths keep their position; glob patterns (doublestar syntax, so
// "data/**/*.ttl" works) expand in sorted order at theirs. Plain paths
// that do not exist are reported as errors; globs matching nothing are not.
func ResolveFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			files = append(files, p)
		}
	}

	for _, pat := range patterns {
		if !hasMeta(pat) {
			if _, err := os.Stat(pat); err != nil {
				return nil, fmt.Errorf("load file %s: %w", pat, err)
			}
			add(pat)
			continue
		}
		matches, err := doublestar.FilepathGlob(pat)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pat, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func hasMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Loader uploads files one at a time with a fixed pause between them.
type Loader struct {
	Sink  Uploader
	Delay time.Duration
}

// Load uploads every file in order. It continues after individual failures
// and stops early only when ctx is done.
func (l *Loader) Load(ctx context.Context, files []string, w io.Writer) (LoadResult, error) {
	res := LoadResult{Failed: make(map[string]error)}
	for i, path := range files {
		if i > 0 {
			if err := httputil.Sleep(ctx, l.Delay); err != nil {
				return res, err
			}
		}
		if err := l.Sink.UploadFile(ctx, path); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			res.Failed[path] = err
			continue
		}
		fmt.Fprintf(w, "loaded:  %s\n", path)
		res.Loaded = append(res.Loaded, path)
	}
	fmt.Fprintf(w, "\nLoad summary: %d loaded, %d failed (total: %d)\n",
		len(res.Loaded), len(res.Failed), res.Total())
	return res, nil
}
