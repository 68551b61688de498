// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/wikigraph/internal/wikitext"
)

// FileResult is the outcome of extracting an infobox from a saved page.
type FileResult struct {
	Title       string
	Template    string
	Bag         wikitext.Bag
	Invocations []wikitext.Invocation
}

// ExtractFile reads a wikitext file and extracts template from it. An empty
// template selects the first top-level invocation whose name contains
// "infobox". The title is the file name without its extension, with
// underscores read as spaces.
func ExtractFile(path, template string) (FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)

	base := filepath.Base(path)
	res := FileResult{
		Title:       strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " "),
		Template:    template,
		Invocations: wikitext.ExtractAll(text),
	}
	if res.Template == "" {
		for _, inv := range res.Invocations {
			if strings.Contains(strings.ToLower(inv.Name), "infobox") {
				res.Template = inv.Name
				break
			}
		}
		if res.Template == "" {
			return res, fmt.Errorf("%s: %w (no infobox invocation)", path, wikitext.ErrTemplateNotFound)
		}
	}

	res.Bag, err = wikitext.Extract(text, res.Template)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
