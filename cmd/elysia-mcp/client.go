package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-thread/elysia-sub000/models"
	"github.com/go-resty/resty/v2"
)

// apiClient talks to a running elysia HTTP API.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL, apiKey string, timeout time.Duration) *apiClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("X-API-Key", apiKey)
	client.SetHeader("User-Agent", "elysia-mcp/1.0")
	client.SetTimeout(timeout)
	return &apiClient{http: client}
}

// post sends payload as JSON and decodes the response body into out for
// both success and error statuses. The API always answers with a JSON
// envelope, so the envelope decides success.
func (c *apiClient) post(ctx context.Context, path string, payload, out any) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(out).
		SetError(out).
		Post(path)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	return nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("not found: %s", path)
	}
	return nil
}

// Scrape calls POST /api/v1/recipes/scrape.
func (c *apiClient) Scrape(ctx context.Context, url string, maxAge int) (*models.ScrapeResponse, error) {
	var out models.ScrapeResponse
	err := c.post(ctx, "/api/v1/recipes/scrape", models.ScrapeRequest{URL: url, MaxAge: maxAge}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Export calls POST /api/v1/recipes/export.
func (c *apiClient) Export(ctx context.Context, recipe *models.ScrapedRecipe, format string) (*models.ExportResponse, error) {
	var out models.ExportResponse
	err := c.post(ctx, "/api/v1/recipes/export", models.ExportRequest{Recipe: recipe, Format: format}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Batch calls POST /api/v1/recipes/batch.
func (c *apiClient) Batch(ctx context.Context, urls []string) (*models.BatchResponse, error) {
	var out models.BatchResponse
	if err := c.post(ctx, "/api/v1/recipes/batch", models.BatchRequest{URLs: urls}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitBatch polls GET /api/v1/recipes/batch/:id until the job leaves the
// processing state or ctx is cancelled.
func (c *apiClient) WaitBatch(ctx context.Context, id string, interval time.Duration) (*models.BatchStatusResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status models.BatchStatusResponse
			if err := c.get(ctx, "/api/v1/recipes/batch/"+id, &status); err != nil {
				return nil, err
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}
