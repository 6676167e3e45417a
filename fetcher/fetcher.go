// Package fetcher retrieves raw recipe page HTML.
package fetcher

import (
	"context"
	"net/url"

	"github.com/a-thread/elysia-sub000/models"
)

// Fetcher is the interface the scraper fetches pages through.
type Fetcher interface {
	// Name returns the fetcher identifier (e.g. "proxy").
	Name() string

	// Fetch retrieves the raw HTML of targetURL.
	Fetch(ctx context.Context, targetURL string) (string, error)
}

// ValidateTarget checks that rawURL is an absolute http(s) URL with a host.
func ValidateTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "malformed URL", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, models.NewScrapeError(
			models.ErrCodeInvalidInput,
			"URL must be an absolute http(s) URL",
			nil,
		)
	}
	return u, nil
}
