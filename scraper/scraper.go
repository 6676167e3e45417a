package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-thread/elysia-sub000/fetcher"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/a-thread/elysia-sub000/parser"
)

// Scraper runs the fetch → parse → normalize → assemble pipeline for one
// URL at a time. It holds no per-call state and is safe for concurrent use.
type Scraper struct {
	fetcher   fetcher.Fetcher
	parseOpts []parser.Option
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithParserOptions passes opts to every parse.
func WithParserOptions(opts ...parser.Option) Option {
	return func(s *Scraper) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// New creates a Scraper that fetches pages through f.
func New(f fetcher.Fetcher, opts ...Option) *Scraper {
	s := &Scraper{fetcher: f}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetcherName reports which fetcher the scraper uses.
func (s *Scraper) FetcherName() string {
	return s.fetcher.Name()
}

// Scrape fetches targetURL and extracts a recipe from it.
//
// The result is all-or-nothing: whenever err is non-nil, recipe is nil. err
// is always a *models.ScrapeError. A panic anywhere in the pipeline is
// recovered and reported as INTERNAL_ERROR.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (recipe *models.ScrapedRecipe, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(models.ErrCodeInternal, "failed to fetch or parse recipe", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			recipe = nil
			slog.Warn("recipe scrape failed", "url", targetURL, "error", err)
			return
		}
		slog.Info("recipe scraped",
			"url", targetURL,
			"title", recipe.Title,
			"ingredients", len(recipe.Ingredients),
			"steps", len(recipe.Steps),
			"duration", time.Since(start),
		)
	}()

	if _, err := fetcher.ValidateTarget(targetURL); err != nil {
		return nil, err
	}

	rawHTML, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, asScrapeError(err, models.ErrCodeFetch, "failed to fetch")
	}

	recipe, err = parser.Parse(rawHTML, targetURL, s.parseOpts...)
	if err != nil {
		return nil, asScrapeError(err, models.ErrCodeParse, "failed to parse recipe page")
	}
	return recipe, nil
}

// asScrapeError keeps coded errors as they are and wraps anything else.
func asScrapeError(err error, code, message string) *models.ScrapeError {
	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr
	}
	return models.NewScrapeError(code, message, err)
}
