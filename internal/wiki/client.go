// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki locates infobox templates and fetches page wikitext from a
// MediaWiki Action API.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	mwclient "cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"

	"github.com/pdiddy/wikigraph/internal/httputil"
	"github.com/pdiddy/wikigraph/pkg/types"
)

var (
	// ErrPageMissing is returned when the wiki reports the page as missing
	// or the title as invalid.
	ErrPageMissing = errors.New("page does not exist")

	// ErrBadResponse is returned when a response lacks the expected fields.
	ErrBadResponse = errors.New("unexpected API response")
)

// maxBatch is the largest list size the API serves to anonymous clients.
const maxBatch = 500

// excludedTemplateMarks drop user sandboxes, talk pages and test templates
// from the infobox listing.
var excludedTemplateMarks = []string{"User:", "User talk:", "Template talk:", "test", "Test"}

// Client wraps a MediaWiki API client with politeness delays, retries and a
// wikitext cache.
type Client struct {
	mw     *mwclient.Client
	cfg    types.WikiConfig
	cache  *PageCache
	policy httputil.Policy
}

// NewClient returns a Client for cfg.APIURL. cache may be nil.
func NewClient(cfg types.WikiConfig, cache *PageCache) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("wiki API URL is empty")
	}
	mw, err := mwclient.New(cfg.APIURL, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("creating MediaWiki client for %s: %w", cfg.APIURL, err)
	}
	if cfg.Timeout > 0 {
		mw.SetHTTPTimeout(cfg.Timeout)
	}
	return &Client{
		mw:     mw,
		cfg:    cfg,
		cache:  cache,
		policy: httputil.Policy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
	}, nil
}

// InfoboxTemplates lists the templates in the infobox category, sorted.
// Talk pages, user sandboxes and test templates are left out.
func (c *Client) InfoboxTemplates(ctx context.Context, w io.Writer) ([]string, error) {
	category := categoryTitle(c.cfg.InfoboxCategory)
	fmt.Fprintf(w, "listing %s\n", category)

	members, err := c.listRetry(ctx, params.Values{
		"action":  "query",
		"list":    "categorymembers",
		"cmtitle": category,
		"cmlimit": strconv.Itoa(maxBatch),
	}, 0, "categorymembers")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}

	var templates []string
	for _, title := range members {
		if !strings.HasPrefix(title, "Template:") || excludedTemplate(title) {
			continue
		}
		templates = append(templates, title)
	}
	sort.Strings(templates)
	fmt.Fprintf(w, "found %d infobox templates\n", len(templates))
	return templates, nil
}

// CategoryMembers lists the titles in category. A limit of 0 lists all.
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	category = categoryTitle(category)
	members, err := c.listRetry(ctx, params.Values{
		"action":  "query",
		"list":    "categorymembers",
		"cmtitle": category,
		"cmlimit": batchSize(limit),
	}, limit, "categorymembers")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}
	return members, nil
}

// EmbeddedIn lists the main-namespace pages that transclude template.
// A limit of 0 lists all.
func (c *Client) EmbeddedIn(ctx context.Context, template string, limit int) ([]string, error) {
	pages, err := c.listRetry(ctx, params.Values{
		"action":       "query",
		"generator":    "embeddedin",
		"geititle":     templateTitle(template),
		"geinamespace": "0",
		"geilimit":     batchSize(limit),
	}, limit, "pages")
	if err != nil {
		return nil, fmt.Errorf("listing pages using %s: %w", template, err)
	}
	return pages, nil
}

// HasPages reports whether any page transcludes template.
func (c *Client) HasPages(ctx context.Context, template string) (bool, error) {
	pages, err := c.EmbeddedIn(ctx, template, 3)
	if err != nil {
		return false, err
	}
	return len(pages) > 0, nil
}

// AllPages lists main-namespace page titles. A limit of 0 lists all.
func (c *Client) AllPages(ctx context.Context, limit int) ([]string, error) {
	pages, err := c.listRetry(ctx, params.Values{
		"action":      "query",
		"list":        "allpages",
		"apnamespace": "0",
		"aplimit":     batchSize(limit),
	}, limit, "allpages")
	if err != nil {
		return nil, fmt.Errorf("listing all pages: %w", err)
	}
	return pages, nil
}

// Wikitext returns the current wikitext of title. Redirects are followed.
// It returns ErrPageMissing when the page does not exist.
func (c *Client) Wikitext(ctx context.Context, title string) (string, error) {
	if text, ok := c.cache.Get(title); ok {
		return text, nil
	}

	var text string
	err := httputil.Retry(ctx, c.policy, retryable(ctx), func() error {
		resp, err := c.mw.Get(params.Values{
			"action":        "query",
			"prop":          "revisions",
			"rvprop":        "content",
			"rvslots":       "main",
			"titles":        title,
			"redirects":     "1",
			"formatversion": "2",
		})
		if err := responseErr(resp, err); err != nil {
			return err
		}
		text, err = revisionContent(resp)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", title, err)
	}
	c.cache.Put(title, text)
	return text, nil
}

// ExternalLinks returns the external URLs linked from title, in the order
// the API lists them. It returns ErrPageMissing when the page does not exist.
func (c *Client) ExternalLinks(ctx context.Context, title string) ([]string, error) {
	var links []string
	err := httputil.Retry(ctx, c.policy, retryable(ctx), func() error {
		resp, err := c.mw.Get(params.Values{
			"action":        "query",
			"prop":          "extlinks",
			"ellimit":       "max",
			"titles":        title,
			"redirects":     "1",
			"formatversion": "2",
		})
		if err := responseErr(resp, err); err != nil {
			return err
		}
		links, err = extlinks(resp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching links of %q: %w", title, err)
	}
	return links, nil
}

// responseErr filters the error of a Get. Warnings arrive with a usable
// response and are dropped; any other error, API errors included, is kept.
func responseErr(resp *jason.Object, err error) error {
	if err == nil {
		return nil
	}
	var warnings mwclient.APIWarnings
	if resp != nil && errors.As(err, &warnings) {
		return nil
	}
	return err
}

// listRetry runs list, retrying the whole listing on transient failures.
func (c *Client) listRetry(ctx context.Context, p params.Values, limit int, key string) ([]string, error) {
	var titles []string
	err := httputil.Retry(ctx, c.policy, retryable(ctx), func() error {
		var err error
		titles, err = c.list(ctx, p, limit, key)
		return err
	})
	return titles, err
}

// list follows continuation tokens and collects the title of every item
// under query.<key>. Pages flagged missing are skipped.
func (c *Client) list(ctx context.Context, p params.Values, limit int, key string) ([]string, error) {
	query := params.Values{"continue": "", "formatversion": "2"}
	for k, v := range p {
		query[k] = v
	}

	var titles []string
	q := c.mw.NewQuery(query)
	for batch := 0; ; batch++ {
		if batch > 0 {
			if err := httputil.Sleep(ctx, c.cfg.RequestDelay); err != nil {
				return nil, err
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.Next() {
			break
		}
		items, err := q.Resp().GetObjectArray("query", key)
		if err != nil {
			// A generator with no results omits "query" entirely.
			continue
		}
		for _, item := range items {
			if missing, err := item.GetBoolean("missing"); err == nil && missing {
				continue
			}
			title, err := item.GetString("title")
			if err != nil {
				return nil, fmt.Errorf("%w: item without title in %s", ErrBadResponse, key)
			}
			titles = append(titles, title)
			if limit > 0 && len(titles) >= limit {
				return titles, nil
			}
		}
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}

// firstPage returns the single page of a titles= query, or ErrPageMissing
// when the wiki flags it missing or invalid.
func firstPage(resp *jason.Object) (*jason.Object, error) {
	pages, err := resp.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrBadResponse)
	}
	page := pages[0]
	for _, flag := range []string{"missing", "invalid"} {
		if v, err := page.GetBoolean(flag); err == nil && v {
			return nil, ErrPageMissing
		}
	}
	return page, nil
}

// revisionContent reads the page content from a prop=revisions response in
// either format version.
func revisionContent(resp *jason.Object) (string, error) {
	page, err := firstPage(resp)
	if err != nil {
		return "", err
	}
	revs, err := page.GetObjectArray("revisions")
	if err != nil || len(revs) == 0 {
		return "", fmt.Errorf("%w: no revisions", ErrBadResponse)
	}
	rev := revs[0]
	for _, path := range [][]string{
		{"slots", "main", "content"},
		{"slots", "main", "*"},
		{"content"},
		{"*"},
	} {
		if text, err := rev.GetString(path...); err == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: revision without content", ErrBadResponse)
}

// extlinks reads the URLs of a prop=extlinks response in either format
// version. A page without external links has no extlinks key.
func extlinks(resp *jason.Object) ([]string, error) {
	page, err := firstPage(resp)
	if err != nil {
		return nil, err
	}
	items, err := page.GetObjectArray("extlinks")
	if err != nil {
		return nil, nil
	}
	var links []string
	for _, item := range items {
		for _, key := range []string{"url", "*"} {
			if link, err := item.GetString(key); err == nil {
				links = append(links, link)
				break
			}
		}
	}
	return links, nil
}

func retryable(ctx context.Context) func(error) bool {
	return func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		var apiErr mwclient.APIError
		if errors.As(err, &apiErr) {
			return false
		}
		return !errors.Is(err, ErrPageMissing) && !errors.Is(err, ErrBadResponse)
	}
}

func excludedTemplate(title string) bool {
	for _, mark := range excludedTemplateMarks {
		if strings.Contains(title, mark) {
			return true
		}
	}
	return false
}

func batchSize(limit int) string {
	if limit > 0 && limit < maxBatch {
		return strconv.Itoa(limit)
	}
	return "max"
}

func categoryTitle(name string) string {
	if strings.HasPrefix(name, "Category:") {
		return name
	}
	return "Category:" + name
}

func templateTitle(name string) string {
	if strings.HasPrefix(name, "Template:") {
		return name
	}
	return "Template:" + name
}

// normalizeTitle folds underscores and surrounding space the way MediaWiki
// does for cache keys.
func normalizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
}
