// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for wikigraph developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"data",
	"data/categories",
	storeDir,
	".secrets",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "wikigraph"
	cmdPkg  = "./cmd/wikigraph"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Stats prints the harvested data on disk: Turtle files and triples under
// data/, the store database size, and Go lines of code.
func Stats() error {
	files, err := doublestar.Glob(os.DirFS("data"), "**/*.ttl")
	if err != nil {
		return fmt.Errorf("listing data: %w", err)
	}
	prefixes := schema.Prefixes(schema.ResourceNS, schema.OntologyNS)
	triples := 0
	for _, f := range files {
		g, err := graph.ReadFile(filepath.Join("data", f), prefixes)
		if err != nil {
			fmt.Printf("  skipping %s: %v\n", f, err)
			continue
		}
		fmt.Printf("  %-48s %7d triples\n", f, g.Len())
		triples += g.Len()
	}

	var dbSize int64
	if info, err := os.Stat(filepath.Join(storeDir, "wikigraph.db")); err == nil {
		dbSize = info.Size()
	}

	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}

	fmt.Printf("Turtle files (data/):  %d\n", len(files))
	fmt.Printf("Triples (data/):       %d\n", triples)
	fmt.Printf("Store database:        %d KiB\n", dbSize/1024)
	fmt.Printf("Go lines (production): %d\n", prodLines)
	fmt.Printf("Go lines (tests):      %d\n", testLines)
	return nil
}

const storeDir = "store"

// countGoLines counts non-blank lines of Go source under root, split into
// production and test files. _examples is skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "_examples" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
