// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	mwclient "cgt.name/pkg/go-mwclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wikigraph/pkg/types"
)

// fakeAPI serves canned api.php responses chosen by the request parameters.
func fakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cache, err := NewPageCache(8)
	require.NoError(t, err)
	c, err := NewClient(types.WikiConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    5 * time.Second,
			UserAgent:  "wikigraph-test/0.1",
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		},
		APIURL:          srv.URL + "/w/api.php",
		InfoboxCategory: "Infobox templates",
	}, cache)
	require.NoError(t, err)
	return c, &calls
}

func TestInfoboxTemplates_FollowsContinuationAndFilters(t *testing.T) {
	c, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "categorymembers", r.FormValue("list"))
		assert.Equal(t, "Category:Infobox templates", r.FormValue("cmtitle"))
		if r.FormValue("cmcontinue") == "" {
			fmt.Fprint(w, `{"continue":{"cmcontinue":"page|2","continue":"-||"},
				"query":{"categorymembers":[
					{"ns":10,"title":"Template:Infobox person"},
					{"ns":10,"title":"Template:Infobox test"},
					{"ns":2,"title":"User:Someone/Infobox"}]}}`)
			return
		}
		assert.Equal(t, "page|2", r.FormValue("cmcontinue"))
		fmt.Fprint(w, `{"batchcomplete":true,"query":{"categorymembers":[
			{"ns":10,"title":"Template:Infobox battle"},
			{"ns":11,"title":"Template talk:Infobox battle"},
			{"ns":0,"title":"Infobox usage"}]}}`)
	})

	var buf bytes.Buffer
	got, err := c.InfoboxTemplates(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Template:Infobox battle", "Template:Infobox person"}, got)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
	assert.Contains(t, buf.String(), "found 2 infobox templates")
}

func TestCategoryMembers_Limit(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Category:Elves", r.FormValue("cmtitle"))
		assert.Equal(t, "2", r.FormValue("cmlimit"))
		fmt.Fprint(w, `{"continue":{"cmcontinue":"x","continue":"-||"},"query":{"categorymembers":[
			{"title":"Elrond"},{"title":"Galadriel"},{"title":"Celeborn"}]}}`)
	})

	got, err := c.CategoryMembers(context.Background(), "Elves", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elrond", "Galadriel"}, got)
}

func TestEmbeddedIn_SkipsMissingPages(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "embeddedin", r.FormValue("generator"))
		assert.Equal(t, "Template:Infobox person", r.FormValue("geititle"))
		assert.Equal(t, "0", r.FormValue("geinamespace"))
		fmt.Fprint(w, `{"query":{"pages":[
			{"pageid":1,"title":"Elrond"},
			{"title":"Ghost","missing":true},
			{"pageid":2,"title":"Arwen"}]}}`)
	})

	got, err := c.EmbeddedIn(context.Background(), "Infobox person", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elrond", "Arwen"}, got)
}

func TestHasPages(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.FormValue("geilimit"))
		if r.FormValue("geititle") == "Template:Infobox unused" {
			fmt.Fprint(w, `{"batchcomplete":true}`)
			return
		}
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Elrond"}]}}`)
	})

	ok, err := c.HasPages(context.Background(), "Template:Infobox person")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasPages(context.Background(), "Template:Infobox unused")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllPages(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "allpages", r.FormValue("list"))
		if r.FormValue("apcontinue") == "" {
			fmt.Fprint(w, `{"continue":{"apcontinue":"B","continue":"-||"},"query":{"allpages":[{"title":"Aragorn"}]}}`)
			return
		}
		fmt.Fprint(w, `{"query":{"allpages":[{"title":"Bilbo Baggins"}]}}`)
	})

	got, err := c.AllPages(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aragorn", "Bilbo Baggins"}, got)
}

func TestWikitext_CachesContent(t *testing.T) {
	c, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "revisions", r.FormValue("prop"))
		assert.Equal(t, "Elrond", r.FormValue("titles"))
		fmt.Fprint(w, `{"query":{"pages":[{"pageid":7,"title":"Elrond","revisions":[
			{"slots":{"main":{"contentmodel":"wikitext","content":"{{Infobox person|name=Elrond}}"}}}]}]}}`)
	})

	for i := 0; i < 2; i++ {
		text, err := c.Wikitext(context.Background(), "Elrond")
		require.NoError(t, err)
		assert.Equal(t, "{{Infobox person|name=Elrond}}", text)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, 1, c.cache.Len())
}

func TestWikitext_LegacyShape(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Elrond","revisions":[{"*":"old style"}]}]}}`)
	})

	text, err := c.Wikitext(context.Background(), "Elrond")
	require.NoError(t, err)
	assert.Equal(t, "old style", text)
}

func TestExternalLinks(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "extlinks", r.FormValue("prop"))
		assert.Equal(t, "max", r.FormValue("ellimit"))
		switch r.FormValue("titles") {
		case "Elrond":
			fmt.Fprint(w, `{"query":{"pages":[{"title":"Elrond","extlinks":[
				{"url":"https://en.wikipedia.org/wiki/Elrond"},
				{"*":"https://lotr.fandom.com/wiki/Elrond"}]}]}}`)
		case "Bob":
			fmt.Fprint(w, `{"query":{"pages":[{"title":"Bob"}]}}`)
		default:
			fmt.Fprint(w, `{"query":{"pages":[{"title":"Nobody","missing":true}]}}`)
		}
	})

	links, err := c.ExternalLinks(context.Background(), "Elrond")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Elrond", "https://lotr.fandom.com/wiki/Elrond"}, links)

	links, err = c.ExternalLinks(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = c.ExternalLinks(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestWikitext_MissingPage(t *testing.T) {
	c, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":[{"ns":0,"title":"Nobody","missing":true}]}}`)
	})

	_, err := c.Wikitext(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrPageMissing)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "missing pages are not retried")
}

func TestWikitext_NoRevisions(t *testing.T) {
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Elrond"}]}}`)
	})

	_, err := c.Wikitext(context.Background(), "Elrond")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestWikitext_APIErrorNotMasked(t *testing.T) {
	c, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"readapidenied","info":"You need read permission to use this module."}}`)
	})

	_, err := c.Wikitext(context.Background(), "Elrond")
	require.Error(t, err)
	var apiErr mwclient.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.NotErrorIs(t, err, ErrPageMissing)
	assert.NotErrorIs(t, err, ErrBadResponse)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "API errors are not retried")
}

func TestWikitext_RetriesTransientFailure(t *testing.T) {
	var n int32
	c, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `not json`)
			return
		}
		fmt.Fprint(w, `{"query":{"pages":[{"title":"Elrond","revisions":[{"slots":{"main":{"content":"ok"}}}]}]}}`)
	})

	text, err := c.Wikitext(context.Background(), "Elrond")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.EqualValues(t, 2, atomic.LoadInt32(&n))
}

func TestList_ContextCancelled(t *testing.T) {
	c, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"allpages":[]}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.AllPages(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(types.WikiConfig{}, nil)
	assert.Error(t, err)
}

func TestPageCache_Evicts(t *testing.T) {
	cache, err := NewPageCache(2)
	require.NoError(t, err)
	cache.Put("A", "a")
	cache.Put("B_title", "b")
	cache.Put("C", "c")

	_, ok := cache.Get("A")
	assert.False(t, ok)
	got, ok := cache.Get("B title")
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	assert.Equal(t, 2, cache.Len())

	var nilCache *PageCache
	nilCache.Put("x", "y")
	_, ok = nilCache.Get("x")
	assert.False(t, ok)
}
