package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-thread/elysia-sub000/fetcher"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/a-thread/elysia-sub000/parser"
)

// stubFetcher serves canned HTML or a canned error.
type stubFetcher struct {
	html  string
	err   error
	panic bool
	calls atomic.Int32
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	return f.html, f.err
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var scrapeErr *models.ScrapeError
	require.True(t, errors.As(err, &scrapeErr), "expected *models.ScrapeError, got %T", err)
	assert.Equal(t, code, scrapeErr.Code)
}

func TestScrape(t *testing.T) {
	f := &stubFetcher{html: `<h1>Tomato Soup</h1><ul class="ingredients"><li>4 tomatoes</li></ul>`}
	sc := New(f, WithParserOptions(parser.WithIDGenerator(func() string { return "fixed" })))

	recipe, err := sc.Scrape(context.Background(), "https://example.com/soup")
	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "Tomato Soup", recipe.Title)
	assert.Equal(t, "https://example.com/soup", recipe.SourceURL)
	assert.Equal(t, []models.RecipeLine{{ID: "fixed", Text: "4 tomatoes", SortNumber: 1, Active: true}}, recipe.Ingredients)
	assert.Equal(t, "stub", sc.FetcherName())
}

func TestScrape_FetchFailureYieldsNil(t *testing.T) {
	f := &stubFetcher{
		html: "<h1>never parsed</h1>",
		err:  errors.New("connection refused"),
	}

	recipe, err := New(f).Scrape(context.Background(), "https://example.com/r")
	assert.Nil(t, recipe)
	requireCode(t, err, models.ErrCodeFetch)
}

func TestScrape_CodedFetchErrorKept(t *testing.T) {
	f := &stubFetcher{err: models.NewScrapeError(models.ErrCodeTimeout, "timed out fetching recipe", context.DeadlineExceeded)}

	recipe, err := New(f).Scrape(context.Background(), "https://example.com/r")
	assert.Nil(t, recipe)
	requireCode(t, err, models.ErrCodeTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScrape_PanicRecovered(t *testing.T) {
	f := &stubFetcher{panic: true}

	recipe, err := New(f).Scrape(context.Background(), "https://example.com/r")
	assert.Nil(t, recipe)
	requireCode(t, err, models.ErrCodeInternal)
}

func TestScrape_InvalidURL(t *testing.T) {
	f := &stubFetcher{html: "<h1>x</h1>"}

	recipe, err := New(f).Scrape(context.Background(), "not a url")
	assert.Nil(t, recipe)
	requireCode(t, err, models.ErrCodeInvalidInput)
	assert.Zero(t, f.calls.Load())
}

func TestScrape_ThroughMockProxy(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := url.QueryUnescape(r.URL.RawQuery)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if target != "https://example.com/recipes/42" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `<html><head><meta property="og:image" content="https://cdn.example.com/42.jpg"></head>
<body><h1>Recipe 42</h1><span class="cook_time">2 hours</span></body></html>`)
	}))
	defer proxy.Close()

	sc := New(fetcher.NewProxyFetcher(fetcher.Options{ProxyURL: proxy.URL + "/?"}))

	recipe, err := sc.Scrape(context.Background(), "https://example.com/recipes/42")
	require.NoError(t, err)
	assert.Equal(t, "Recipe 42", recipe.Title)
	assert.Equal(t, 120, recipe.CookTimeMinutes)
	require.NotNil(t, recipe.ImageURL)
	assert.Equal(t, "https://cdn.example.com/42.jpg", *recipe.ImageURL)

	recipe, err = sc.Scrape(context.Background(), "https://example.com/recipes/missing")
	assert.Nil(t, recipe)
	requireCode(t, err, models.ErrCodeFetch)
}

// pathFetcher echoes the target back as the page title.
type pathFetcher struct{}

func (pathFetcher) Name() string { return "path" }

func (pathFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	return fmt.Sprintf("<h1>%s</h1><ul class=\"ingredients\"><li>1 egg</li></ul>", targetURL), nil
}

func TestScrape_ConcurrentCallsIndependent(t *testing.T) {
	sc := New(pathFetcher{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := fmt.Sprintf("https://example.com/r/%d", i)
			recipe, err := sc.Scrape(context.Background(), target)
			if assert.NoError(t, err) {
				assert.Equal(t, target, recipe.Title)
				assert.Equal(t, target, recipe.SourceURL)
				assert.Len(t, recipe.Ingredients, 1)
			}
		}(i)
	}
	wg.Wait()
}
