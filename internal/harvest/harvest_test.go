// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/schema"
	"github.com/pdiddy/wikigraph/internal/wiki"
	"github.com/pdiddy/wikigraph/internal/wikitext"
	"github.com/pdiddy/wikigraph/pkg/types"
)

const elrondText = `'''Elrond''' was the Lord of [[Rivendell]].
{{Infobox character
| name = Elrond
| birth = {{FA|532}}
| spouse = [[Celebrían]]
| realm = [[Rivendell]]
}}`

type fakeWiki struct {
	templates []string
	members   map[string][]string
	embedded  map[string][]string
	all       []string
	pages     map[string]string
	errs      map[string]error
	fetched   []string
	onFetch   func(title string)
	extlinks  map[string][]string
}

func (f *fakeWiki) InfoboxTemplates(ctx context.Context, w io.Writer) ([]string, error) {
	return f.templates, nil
}

func (f *fakeWiki) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	return f.members[category], nil
}

func (f *fakeWiki) EmbeddedIn(ctx context.Context, template string, limit int) ([]string, error) {
	pages := f.embedded[template]
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}
	return pages, nil
}

func (f *fakeWiki) HasPages(ctx context.Context, template string) (bool, error) {
	return len(f.embedded[template]) > 0, nil
}

func (f *fakeWiki) AllPages(ctx context.Context, limit int) ([]string, error) {
	return f.all, nil
}

func (f *fakeWiki) Wikitext(ctx context.Context, title string) (string, error) {
	f.fetched = append(f.fetched, title)
	if f.onFetch != nil {
		f.onFetch(title)
	}
	if err, ok := f.errs[title]; ok {
		return "", err
	}
	return f.pages[title], nil
}

func (f *fakeWiki) ExternalLinks(ctx context.Context, title string) ([]string, error) {
	f.fetched = append(f.fetched, title)
	if f.onFetch != nil {
		f.onFetch(title)
	}
	if err, ok := f.errs[title]; ok {
		return nil, err
	}
	return f.extlinks[title], nil
}

func newHarvester(t *testing.T, fw *fakeWiki) (*Harvester, *graph.Graph, types.GraphConfig) {
	t.Helper()
	cfg := types.Defaults().Graph
	g := graph.New(schema.Prefixes(cfg.ResourceBase, cfg.OntologyBase))
	mapper := schema.NewMapper(cfg.ResourceBase, cfg.OntologyBase, nil)
	b := graph.NewBuilder(g, mapper, graph.NewMinter(cfg.Collision), cfg)
	return New(fw, b, metrics.New(), 0), g, cfg
}

func TestRun_Outcomes(t *testing.T) {
	fw := &fakeWiki{
		templates: []string{"Template:Infobox character", "Template:Infobox unused"},
		embedded: map[string][]string{
			"Template:Infobox character": {"Elrond", "Nobody", "Plain", "Broken", "Hollow"},
		},
		pages: map[string]string{
			"Elrond": elrondText,
			"Plain":  "No infobox on this page.",
			"Hollow": "{{Infobox character\n| 1 = positional\n| name = \n}}",
		},
		errs: map[string]error{
			"Nobody": wiki.ErrPageMissing,
			"Broken": errors.New("connection reset"),
		},
	}
	h, g, cfg := newHarvester(t, fw)

	var buf bytes.Buffer
	sum, err := h.Run(context.Background(), Options{Probe: true}, &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Template:Infobox character"}, sum.Templates)
	assert.Equal(t, []string{"Template:Infobox unused"}, sum.SkippedTemplates)
	assert.Equal(t, 1, sum.Extracted)
	assert.Equal(t, 1, sum.Missing)
	assert.Equal(t, 1, sum.NotFound)
	assert.Equal(t, 1, sum.Empty)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 5, sum.Total())
	assert.True(t, sum.HasFailures())
	assert.Equal(t, map[string]int{schema.Character: 1}, sum.ByCategory)
	assert.Equal(t, []string{schema.Character}, sum.Categories())
	assert.Equal(t, g.Len(), sum.Triples)

	elrond := cfg.ResourceBase + "Elrond"
	assert.True(t, g.Has(graph.T(elrond, schema.RDFType, graph.IRI(schema.Person))))
	assert.True(t, g.Has(graph.T(elrond, schema.SchemaNS+"spouse", graph.IRI(cfg.ResourceBase+"Celebrian"))))
	assert.Empty(t, g.Filter(&graph.Term{Kind: graph.KindIRI, Value: cfg.ResourceBase + "Plain"}, nil, nil))

	out := buf.String()
	assert.Contains(t, out, "extracted: Elrond")
	assert.Contains(t, out, "failed:  Broken")
	assert.Contains(t, out, "1/5 extracted")

	PrintSummary(&buf, sum, g)
	assert.Contains(t, buf.String(), "1 extracted, 1 not found, 1 empty, 1 missing, 1 failed (total: 5)")
}

func TestRun_GivenTemplatesRespectLimit(t *testing.T) {
	fw := &fakeWiki{
		embedded: map[string][]string{"Infobox character": {"Elrond", "Elrond", "Elrond"}},
		pages:    map[string]string{"Elrond": elrondText},
	}
	h, _, _ := newHarvester(t, fw)

	sum, err := h.Run(context.Background(), Options{Templates: []string{"Infobox character"}, PagesPerTemplate: 2}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total())
	assert.Len(t, fw.fetched, 2)
	assert.Empty(t, sum.SkippedTemplates)
}

func TestRun_ContextCancelled(t *testing.T) {
	fw := &fakeWiki{
		embedded: map[string][]string{"Infobox character": {"Elrond", "Elrond"}},
		pages:    map[string]string{"Elrond": elrondText},
	}
	h, _, _ := newHarvester(t, fw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := h.Run(ctx, Options{Templates: []string{"Infobox character"}}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Total())
}

func TestRun_CancelledMidRunKeepsPartialGraph(t *testing.T) {
	infobox := "{{Infobox character\n| name = Adrahil\n}}"
	fw := &fakeWiki{
		embedded: map[string][]string{"Infobox character": {
			"Adrahil (Captain of the Left Wing)", "Adrahil (Prince of Dol Amroth)", "Elrond",
		}},
		pages: map[string]string{
			"Adrahil (Captain of the Left Wing)": infobox,
			"Adrahil (Prince of Dol Amroth)":     infobox,
			"Elrond":                             elrondText,
		},
	}
	h, g, cfg := newHarvester(t, fw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.onFetch = func(title string) {
		if title == "Adrahil (Prince of Dol Amroth)" {
			cancel()
		}
	}

	sum, err := h.Run(ctx, Options{Templates: []string{"Infobox character"}}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, sum.Extracted)
	assert.NotContains(t, fw.fetched, "Elrond")
	require.Len(t, sum.Collisions, 1)
	assert.Equal(t, "Adrahil_2", sum.Collisions[0].Name)

	out, err := WriteOutput(t.TempDir(), "partial", g, sum.Templates, false, cfg.OntologyBase, time.Now())
	require.NoError(t, err)
	back, err := graph.ReadFile(out.Graph, g.Prefixes())
	require.NoError(t, err)
	assert.Equal(t, g.Len(), back.Len())
	assert.NotEmpty(t, back.Objects(cfg.ResourceBase+"Adrahil_2", schema.Name))
}

func TestRun_CancelledWhileProbing(t *testing.T) {
	fw := &fakeWiki{embedded: map[string][]string{"Infobox character": {"Elrond"}}}
	h, _, _ := newHarvester(t, fw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Wiki = &cancelledListingWiki{fakeWiki: fw}

	sum, err := h.Run(ctx, Options{Templates: []string{"Infobox character"}, Probe: true}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, sum.ByCategory)
	assert.Empty(t, fw.fetched)
}

// cancelledListingWiki answers HasPages with the context error.
type cancelledListingWiki struct {
	*fakeWiki
}

func (p *cancelledListingWiki) HasPages(ctx context.Context, template string) (bool, error) {
	return false, ctx.Err()
}

func TestAlign(t *testing.T) {
	fw := &fakeWiki{
		extlinks: map[string][]string{
			"Elrond":  {"https://lotr.fandom.com/wiki/Elrond", "https://en.wikipedia.org/wiki/Elrond"},
			"Gandalf": {"https://lotr.fandom.com/wiki/Gandalf"},
		},
		errs: map[string]error{
			"Nobody": fmt.Errorf("fetching links: %w", wiki.ErrPageMissing),
			"Sauron": errors.New("connection reset"),
		},
	}
	h, g, cfg := newHarvester(t, fw)

	var out bytes.Buffer
	sum, err := h.Align(context.Background(), []string{"Elrond", "Gandalf", "Nobody", "Sauron"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Aligned)
	assert.Equal(t, 1, sum.NoLink)
	assert.Equal(t, 1, sum.Missing)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 4, sum.Total())
	assert.True(t, sum.HasFailures())
	assert.Equal(t, 2, sum.Triples)

	assert.Equal(t, []graph.Term{
		graph.IRI(schema.DBpediaNS + "Elrond"),
		graph.IRI(schema.YAGONS + "Elrond"),
	}, g.Objects(cfg.ResourceBase+"Elrond", schema.SameAs))
	assert.Contains(t, out.String(), "aligned: Elrond -> Elrond")

	PrintAlignSummary(&out, sum)
	assert.Contains(t, out.String(), "1 aligned, 1 without Wikipedia link, 1 missing, 1 failed (total: 4)")
}

func TestAlign_ContextCancelled(t *testing.T) {
	fw := &fakeWiki{extlinks: map[string][]string{"Elrond": {"https://en.wikipedia.org/wiki/Elrond"}}}
	h, g, _ := newHarvester(t, fw)

	ctx, cancel := context.WithCancel(context.Background())
	fw.onFetch = func(string) { cancel() }
	sum, err := h.Align(ctx, []string{"Elrond", "Gandalf"}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Aligned)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"Elrond"}, fw.fetched)
}

func TestRunCategory_KeepsBareSubjects(t *testing.T) {
	fw := &fakeWiki{
		members: map[string][]string{"Third Age characters": {"Elrond", "Adrahil (Captain of the Left Wing)"}},
		pages: map[string]string{
			"Elrond":                             elrondText,
			"Adrahil (Captain of the Left Wing)": "Adrahil led the left wing.",
		},
	}
	h, g, cfg := newHarvester(t, fw)

	sum, err := h.RunCategory(context.Background(), "Third Age characters", "Infobox character", 0, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Extracted)
	assert.Equal(t, 1, sum.NotFound)

	adrahil := cfg.ResourceBase + "Adrahil"
	assert.True(t, g.Has(graph.T(adrahil, schema.RDFType, graph.IRI(schema.Person))))
	assert.True(t, g.Has(graph.T(adrahil, cfg.OntologyBase+"descriptionNote", graph.Literal("Captain of the Left Wing"))))
}

func TestRunPages(t *testing.T) {
	fw := &fakeWiki{all: []string{"Aragorn", "Bilbo Baggins"}}
	h, g, cfg := newHarvester(t, fw)

	sum, err := h.RunPages(context.Background(), 0, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Extracted)
	assert.Equal(t, 20, sum.Triples)
	assert.Equal(t, 20, g.Len())
	assert.True(t, g.Has(graph.T(cfg.PageBase+"Bilbo_Baggins", schema.About, graph.IRI(cfg.ResourceBase+"Bilbo_Baggins"))))
	assert.Empty(t, fw.fetched)
}

func TestWriteOutput(t *testing.T) {
	fw := &fakeWiki{
		embedded: map[string][]string{"Infobox character": {"Elrond"}},
		pages:    map[string]string{"Elrond": elrondText},
	}
	h, g, cfg := newHarvester(t, fw)
	_, err := h.Run(context.Background(), Options{Templates: []string{"Infobox character"}}, io.Discard)
	require.NoError(t, err)

	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 30, 5, 0, time.UTC)
	out, err := WriteOutput(dir, "tolkien_graph", g, []string{"Infobox character"}, true, cfg.OntologyBase, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tolkien_graph_20260301_123005.ttl"), out.Graph)
	assert.Equal(t, filepath.Join(dir, "templates_20260301_123005.txt"), out.Templates)
	assert.Equal(t, []string{filepath.Join(dir, "categories", "character_20260301_123005.ttl")}, out.Categories)

	list, err := os.ReadFile(out.Templates)
	require.NoError(t, err)
	assert.Equal(t, "Infobox character\n\nTotal: 1 templates\n", string(list))

	back, err := graph.ReadFile(out.Graph, g.Prefixes())
	require.NoError(t, err)
	assert.Equal(t, g.Len(), back.Len())
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Elrond.txt")
	require.NoError(t, os.WriteFile(path, []byte(elrondText), 0o644))

	res, err := ExtractFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Elrond", res.Title)
	assert.Equal(t, "Infobox character", res.Template)
	assert.Equal(t, []string{"name", "birth", "spouse", "realm"}, res.Bag.Keys())
	require.Len(t, res.Invocations, 1)

	plain := filepath.Join(dir, "Plain_page.txt")
	require.NoError(t, os.WriteFile(plain, []byte("no templates"), 0o644))
	res, err = ExtractFile(plain, "")
	assert.ErrorIs(t, err, wikitext.ErrTemplateNotFound)
	assert.Equal(t, "Plain page", res.Title)

	_, err = ExtractFile(filepath.Join(dir, "absent.txt"), "Infobox character")
	assert.Error(t, err)
}
